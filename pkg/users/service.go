package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/envboard/envboard/pkg/apperrors"
)

// PostgresService implements Service backed by PostgreSQL.
type PostgresService struct {
	db *sql.DB
}

// NewPostgresService creates a new PostgreSQL-backed user service.
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{db: db}
}

// CreateUser registers a new user.
func (s *PostgresService) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" {
		return nil, apperrors.New(apperrors.KindValidation, "username is required")
	}
	if email == "" {
		return nil, apperrors.New(apperrors.KindValidation, "email is required")
	}

	user := &User{
		Username: username,
		Email:    email,
		FullName: strings.TrimSpace(req.FullName),
		IsActive: true,
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, full_name, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, user.Username, user.Email, user.FullName, user.IsActive).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, apperrors.New(apperrors.KindConflict, "username or email already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUser returns a user by ID.
func (s *PostgresService) GetUser(ctx context.Context, id int64) (*User, error) {
	user := &User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, full_name, is_active, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Errorf(apperrors.KindNotFound, "user %d not found", id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail returns the user registered under the given email.
func (s *PostgresService) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, full_name, is_active, created_at
		FROM users
		WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email))).
		Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Errorf(apperrors.KindNotFound, "no user registered with email %s", email)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}
