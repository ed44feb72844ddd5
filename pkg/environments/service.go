package environments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/envboard/envboard/pkg/apperrors"
	"github.com/envboard/envboard/pkg/users"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// PostgresService implements the Service interface using PostgreSQL.
type PostgresService struct {
	db    *sql.DB
	users users.Service
}

// NewPostgresService creates a new PostgreSQL-backed environment service.
func NewPostgresService(db *sql.DB, userSvc users.Service) *PostgresService {
	return &PostgresService{db: db, users: userSvc}
}

// CreateEnvironment creates an environment and provisions the three
// default roles in the same transaction, so no operation can observe
// the environment without its canonical roles.
func (s *PostgresService) CreateEnvironment(ctx context.Context, creatorID int64, req *CreateEnvironmentRequest) (*Environment, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.New(apperrors.KindValidation, "environment name is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	env := &Environment{
		Name:            name,
		Color:           strings.TrimSpace(req.Color),
		AdministratorID: creatorID,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO environments (name, color, administrator_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, env.Name, env.Color, env.AdministratorID).Scan(&env.ID, &env.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create environment: %w", err)
	}

	for _, name := range []RoleName{RoleReader, RoleEditor, RoleAdministrator} {
		v := DefaultVector(name)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO roles (environment_id, name, can_view, can_create, can_edit, can_delete)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, env.ID, name, v.View, v.Create, v.Edit, v.Delete)
		if err != nil {
			return nil, fmt.Errorf("failed to create default role %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit environment creation: %w", err)
	}

	return env, nil
}

// GetEnvironment retrieves an environment by ID.
func (s *PostgresService) GetEnvironment(ctx context.Context, id int64) (*Environment, error) {
	env := &Environment{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, color, administrator_id, created_at
		FROM environments
		WHERE id = $1
	`, id).Scan(&env.ID, &env.Name, &env.Color, &env.AdministratorID, &env.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Errorf(apperrors.KindNotFound, "environment %d not found", id)
		}
		return nil, fmt.Errorf("failed to get environment: %w", err)
	}
	return env, nil
}

// ListEnvironments returns the environments the user administers or is
// in the participant set of, newest first.
func (s *PostgresService) ListEnvironments(ctx context.Context, userID int64) ([]*Environment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT e.id, e.name, e.color, e.administrator_id, e.created_at
		FROM environments e
		LEFT JOIN environment_participant_set ps ON ps.environment_id = e.id
		WHERE e.administrator_id = $1 OR ps.user_id = $1
		ORDER BY e.created_at DESC, e.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list environments: %w", err)
	}
	defer rows.Close()

	var envs []*Environment
	for rows.Next() {
		env := &Environment{}
		if err := rows.Scan(&env.ID, &env.Name, &env.Color, &env.AdministratorID, &env.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan environment: %w", err)
		}
		envs = append(envs, env)
	}
	return envs, rows.Err()
}

// UpdateEnvironment updates the environment's name and color.
func (s *PostgresService) UpdateEnvironment(ctx context.Context, id int64, req *UpdateEnvironmentRequest) (*Environment, error) {
	env, err := s.GetEnvironment(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.New(apperrors.KindValidation, "environment name is required")
		}
		env.Name = name
	}
	if req.Color != nil {
		env.Color = strings.TrimSpace(*req.Color)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE environments SET name = $1, color = $2 WHERE id = $3
	`, env.Name, env.Color, env.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update environment: %w", err)
	}
	return env, nil
}

// DeleteEnvironment deletes the environment. Dependent rows cascade at
// the storage layer.
func (s *PostgresService) DeleteEnvironment(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM environments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete environment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.Errorf(apperrors.KindNotFound, "environment %d not found", id)
	}
	return nil
}
