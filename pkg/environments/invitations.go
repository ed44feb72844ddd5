package environments

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/envboard/envboard/pkg/apperrors"
)

// CreateInvitation validates and creates a pending invitation. Only the
// first violated rule is reported, and duplicate failures surface a
// generic message that does not reveal existing row state.
func (s *PostgresService) CreateInvitation(ctx context.Context, inviterID, environmentID int64, req *CreateInvitationRequest) (*Invitation, error) {
	env, err := s.GetEnvironment(ctx, environmentID)
	if err != nil {
		return nil, err
	}

	if env.AdministratorID != inviterID {
		inSet, err := s.InParticipantSet(ctx, inviterID, environmentID)
		if err != nil {
			return nil, err
		}
		if !inSet {
			return nil, apperrors.New(apperrors.KindPermissionDenied, "only the administrator or a participant can send invitations")
		}
	}

	if req == nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid invitation request")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, apperrors.New(apperrors.KindValidation, "guest email is required")
	}

	inviter, err := s.users.GetUser(ctx, inviterID)
	if err != nil {
		return nil, err
	}
	if inviter.Email == email {
		return nil, apperrors.New(apperrors.KindValidation, "you cannot invite yourself")
	}

	var pendingExists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM invitations
			WHERE environment_id = $1 AND email = $2 AND NOT accepted
		)
	`, environmentID, email).Scan(&pendingExists)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}
	if pendingExists {
		return nil, apperrors.New(apperrors.KindConflict, "this guest has already been invited to this environment")
	}

	var isParticipant bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM environment_participant_set ps
			JOIN users u ON u.id = ps.user_id
			WHERE ps.environment_id = $1 AND u.email = $2
		)
	`, environmentID, email).Scan(&isParticipant)
	if err != nil {
		return nil, fmt.Errorf("failed to check participant set: %w", err)
	}
	if isParticipant {
		return nil, apperrors.New(apperrors.KindConflict, "this guest is already a participant of this environment")
	}

	admin, err := s.users.GetUser(ctx, env.AdministratorID)
	if err != nil {
		return nil, err
	}
	if admin.Email == email {
		return nil, apperrors.New(apperrors.KindConflict, "this guest is already a participant of this environment")
	}

	guest, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.New(apperrors.KindValidation, "no registered user matches this email")
		}
		return nil, err
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	inv := &Invitation{
		EnvironmentID: environmentID,
		Email:         email,
		Token:         token,
		InviterID:     inviterID,
		GuestID:       guest.ID,
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO invitations (environment_id, email, token, inviter_id, guest_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, inv.EnvironmentID, inv.Email, inv.Token, inv.InviterID, inv.GuestID).
		Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.New(apperrors.KindConflict, "this guest has already been invited to this environment")
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	return inv, nil
}

// GetInvitation retrieves an invitation by ID.
func (s *PostgresService) GetInvitation(ctx context.Context, id int64) (*Invitation, error) {
	inv := &Invitation{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, environment_id, email, token, inviter_id, guest_id, accepted, created_at
		FROM invitations
		WHERE id = $1
	`, id).Scan(&inv.ID, &inv.EnvironmentID, &inv.Email, &inv.Token,
		&inv.InviterID, &inv.GuestID, &inv.Accepted, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Errorf(apperrors.KindNotFound, "invitation %d not found", id)
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// ListInvitations returns the pending invitations addressed to the
// user, newest first. Tokens are not included in listings.
func (s *PostgresService) ListInvitations(ctx context.Context, guestID int64) ([]*Invitation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, environment_id, email, inviter_id, guest_id, accepted, created_at
		FROM invitations
		WHERE guest_id = $1 AND NOT accepted
		ORDER BY created_at DESC, id DESC
	`, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invs []*Invitation
	for rows.Next() {
		inv := &Invitation{}
		if err := rows.Scan(&inv.ID, &inv.EnvironmentID, &inv.Email,
			&inv.InviterID, &inv.GuestID, &inv.Accepted, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

// AcceptInvitation adds the guest to the environment's participant set
// and marks the invitation accepted. A user other than the guest gets
// not-found so invitation existence is not revealed. The participant
// row with the reader role is provisioned eagerly after the transition
// commits.
func (s *PostgresService) AcceptInvitation(ctx context.Context, actingUserID, invitationID int64) error {
	inv, err := s.GetInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.GuestID != actingUserID {
		return apperrors.Errorf(apperrors.KindNotFound, "invitation %d not found", invitationID)
	}
	if inv.Accepted {
		return apperrors.New(apperrors.KindConflict, "invitation already accepted")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := addToParticipantSet(ctx, tx, inv.GuestID, inv.EnvironmentID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE invitations SET accepted = TRUE
		WHERE id = $1 AND NOT accepted
	`, inv.ID)
	if err != nil {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check accept result: %w", err)
	}
	if affected == 0 {
		return apperrors.New(apperrors.KindConflict, "invitation already accepted")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit invitation acceptance: %w", err)
	}

	if _, err := s.EnsureParticipant(ctx, inv.GuestID, inv.EnvironmentID); err != nil {
		return err
	}
	return nil
}

// DeclineInvitation deletes the invitation row entirely. Only the guest
// may decline, and an accepted invitation can no longer be declined.
func (s *PostgresService) DeclineInvitation(ctx context.Context, actingUserID, invitationID int64) error {
	inv, err := s.GetInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.GuestID != actingUserID {
		return apperrors.Errorf(apperrors.KindNotFound, "invitation %d not found", invitationID)
	}
	if inv.Accepted {
		return apperrors.New(apperrors.KindConflict, "invitation already accepted")
	}

	_, err = s.db.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1`, inv.ID)
	if err != nil {
		return fmt.Errorf("failed to decline invitation: %w", err)
	}
	return nil
}

// generateToken mints a 256-bit random invitation token, hex-encoded.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invitation token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
