package environments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/envboard/envboard/pkg/apperrors"
)

// EnsureParticipant returns the participant row for (user, environment),
// creating it with the environment's reader role when absent. Losing an
// insert race to a concurrent caller resolves by re-reading the winner's
// row, so repeated calls always converge on one row.
func (s *PostgresService) EnsureParticipant(ctx context.Context, userID, environmentID int64) (*Participant, error) {
	p, err := s.getParticipantByUser(ctx, userID, environmentID)
	if err == nil {
		return p, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	reader, err := scanRole(s.db.QueryRowContext(ctx, `
		SELECT id, environment_id, name, can_view, can_create, can_edit, can_delete, created_at
		FROM roles
		WHERE environment_id = $1 AND name = $2
	`, environmentID, RoleReader))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, fmt.Errorf("environment %d has no reader role", environmentID)
		}
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO participants (user_id, environment_id, role_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, environment_id) DO NOTHING
	`, userID, environmentID, reader.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}

	return s.getParticipantByUser(ctx, userID, environmentID)
}

// GetParticipant retrieves a participant row by ID.
func (s *PostgresService) GetParticipant(ctx context.Context, id int64) (*Participant, error) {
	p := &Participant{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, environment_id, role_id, joined_at
		FROM participants
		WHERE id = $1
	`, id).Scan(&p.ID, &p.UserID, &p.EnvironmentID, &p.RoleID, &p.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Errorf(apperrors.KindNotFound, "participant %d not found", id)
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

func (s *PostgresService) getParticipantByUser(ctx context.Context, userID, environmentID int64) (*Participant, error) {
	p := &Participant{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, environment_id, role_id, joined_at
		FROM participants
		WHERE user_id = $1 AND environment_id = $2
	`, userID, environmentID).Scan(&p.ID, &p.UserID, &p.EnvironmentID, &p.RoleID, &p.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.New(apperrors.KindNotFound, "participant not found")
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// InParticipantSet reports whether the user belongs to the environment's
// participant set.
func (s *PostgresService) InParticipantSet(ctx context.Context, userID, environmentID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM environment_participant_set
			WHERE user_id = $1 AND environment_id = $2
		)
	`, userID, environmentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check participant set: %w", err)
	}
	return exists, nil
}

// addToParticipantSet inserts the membership edge, ignoring duplicates.
func addToParticipantSet(ctx context.Context, tx *sql.Tx, userID, environmentID int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO environment_participant_set (environment_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, environmentID, userID)
	if err != nil {
		return fmt.Errorf("failed to add user to participant set: %w", err)
	}
	return nil
}

// ListEffectiveMembers enumerates every user in the environment's
// participant set, backfilling missing participant rows before
// returning. The backfill reconciles drift from invitation acceptance
// paths that added a user to the set without a participant row.
func (s *PostgresService) ListEffectiveMembers(ctx context.Context, environmentID int64) ([]*EffectiveMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM environment_participant_set
		WHERE environment_id = $1
		ORDER BY user_id
	`, environmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participant set: %w", err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan participant set: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	members := make([]*EffectiveMember, 0, len(userIDs))
	for _, userID := range userIDs {
		participant, err := s.EnsureParticipant(ctx, userID, environmentID)
		if err != nil {
			return nil, err
		}

		user, err := s.users.GetUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		member := &EffectiveMember{User: user, Participant: participant}
		if participant.RoleID != nil {
			role, err := s.GetRole(ctx, *participant.RoleID)
			if err != nil {
				return nil, err
			}
			member.Role = role
		}
		members = append(members, member)
	}
	return members, nil
}
