package environments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/envboard/envboard/pkg/apperrors"
)

// GetRole retrieves a role by ID.
func (s *PostgresService) GetRole(ctx context.Context, id int64) (*Role, error) {
	return scanRole(s.db.QueryRowContext(ctx, `
		SELECT id, environment_id, name, can_view, can_create, can_edit, can_delete, created_at
		FROM roles
		WHERE id = $1
	`, id))
}

// ApplyPermissions classifies the vector and assigns the resulting role
// to the participant. Canonical roles are interned per environment and
// an existing row's stored flags win over a mismatched vector. Custom
// roles belong to one participant: if the participant already holds a
// custom role its flags are updated in place, otherwise a fresh custom
// row is created. The role write and the participant's role reference
// update commit together.
func (s *PostgresService) ApplyPermissions(ctx context.Context, environmentID, participantID int64, vector CapabilityVector) (*PermissionAssignment, error) {
	participant, err := s.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if participant.EnvironmentID != environmentID {
		return nil, apperrors.Errorf(apperrors.KindNotFound, "participant %d not found", participantID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	name := Classify(vector)

	var role *Role
	if name == RoleCustom {
		role, err = s.assignCustomRole(ctx, tx, participant, vector)
	} else {
		role, err = s.internCanonicalRole(ctx, tx, environmentID, name, vector)
	}
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE participants SET role_id = $1 WHERE id = $2`,
		role.ID, participant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to assign role to participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit permission change: %w", err)
	}

	return &PermissionAssignment{
		ParticipantID: participant.ID,
		RoleID:        role.ID,
		RoleName:      role.Name,
		Capabilities:  role.Capabilities,
	}, nil
}

// internCanonicalRole fetches the single (environment, name) role row,
// creating it with the given vector when absent. A concurrent creator
// winning the insert race is handled by re-reading.
func (s *PostgresService) internCanonicalRole(ctx context.Context, tx *sql.Tx, environmentID int64, name RoleName, vector CapabilityVector) (*Role, error) {
	role, err := scanRole(tx.QueryRowContext(ctx, `
		SELECT id, environment_id, name, can_view, can_create, can_edit, can_delete, created_at
		FROM roles
		WHERE environment_id = $1 AND name = $2
	`, environmentID, name))
	if err == nil {
		return role, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO roles (environment_id, name, can_view, can_create, can_edit, can_delete)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
	`, environmentID, name, vector.View, vector.Create, vector.Edit, vector.Delete)
	if err != nil {
		return nil, fmt.Errorf("failed to create role %s: %w", name, err)
	}

	return scanRole(tx.QueryRowContext(ctx, `
		SELECT id, environment_id, name, can_view, can_create, can_edit, can_delete, created_at
		FROM roles
		WHERE environment_id = $1 AND name = $2
	`, environmentID, name))
}

// assignCustomRole mutates the participant's existing custom role in
// place, or creates a fresh one when the participant has no role or a
// canonical one.
func (s *PostgresService) assignCustomRole(ctx context.Context, tx *sql.Tx, participant *Participant, vector CapabilityVector) (*Role, error) {
	if participant.RoleID != nil {
		current, err := scanRole(tx.QueryRowContext(ctx, `
			SELECT id, environment_id, name, can_view, can_create, can_edit, can_delete, created_at
			FROM roles
			WHERE id = $1
		`, *participant.RoleID))
		if err != nil && !apperrors.IsNotFound(err) {
			return nil, err
		}
		if err == nil && current.Name == RoleCustom {
			_, err = tx.ExecContext(ctx, `
				UPDATE roles SET can_view = $1, can_create = $2, can_edit = $3, can_delete = $4
				WHERE id = $5
			`, vector.View, vector.Create, vector.Edit, vector.Delete, current.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to update custom role: %w", err)
			}
			current.Capabilities = vector
			return current, nil
		}
	}

	role := &Role{
		EnvironmentID: participant.EnvironmentID,
		Name:          RoleCustom,
		Capabilities:  vector,
	}
	err := tx.QueryRowContext(ctx, `
		INSERT INTO roles (environment_id, name, can_view, can_create, can_edit, can_delete)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, role.EnvironmentID, role.Name, vector.View, vector.Create, vector.Edit, vector.Delete).
		Scan(&role.ID, &role.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom role: %w", err)
	}
	return role, nil
}

// GetPermissions returns the participant's current role name and flags.
// A participant without a role reports custom with all flags false.
func (s *PostgresService) GetPermissions(ctx context.Context, environmentID, participantID int64) (*PermissionAssignment, error) {
	participant, err := s.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if participant.EnvironmentID != environmentID {
		return nil, apperrors.Errorf(apperrors.KindNotFound, "participant %d not found", participantID)
	}

	assignment := &PermissionAssignment{
		ParticipantID: participant.ID,
		RoleName:      RoleCustom,
	}
	if participant.RoleID == nil {
		return assignment, nil
	}

	role, err := s.GetRole(ctx, *participant.RoleID)
	if err != nil {
		return nil, err
	}
	assignment.RoleID = role.ID
	assignment.RoleName = role.Name
	assignment.Capabilities = role.Capabilities
	return assignment, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (*Role, error) {
	role := &Role{}
	err := row.Scan(&role.ID, &role.EnvironmentID, &role.Name,
		&role.Capabilities.View, &role.Capabilities.Create,
		&role.Capabilities.Edit, &role.Capabilities.Delete, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.New(apperrors.KindNotFound, "role not found")
		}
		return nil, fmt.Errorf("failed to scan role: %w", err)
	}
	return role, nil
}
