package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/envboard/envboard/pkg/apperrors"
	"github.com/envboard/envboard/pkg/environments"
)

// Capability names one of the four capability flags.
type Capability string

const (
	CapabilityView   Capability = "view"
	CapabilityCreate Capability = "create"
	CapabilityEdit   Capability = "edit"
	CapabilityDelete Capability = "delete"
)

// Valid reports whether the capability is one of the four known flags.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityView, CapabilityCreate, CapabilityEdit, CapabilityDelete:
		return true
	}
	return false
}

// Decision is the outcome of a single capability check.
type Decision struct {
	Allowed    bool       `json:"allowed"`
	Capability Capability `json:"capability"`
	Reason     string     `json:"reason"`
	CheckedAt  time.Time  `json:"checked_at"`
}

// Checker resolves effective capabilities against the store.
type Checker struct {
	db *sql.DB
}

// NewChecker creates a new access checker.
func NewChecker(db *sql.DB) *Checker {
	return &Checker{db: db}
}

// Resolve computes the effective capability vector for the user in the
// environment. The owning administrator gets all four flags without a
// role lookup; a user with no participant row, or a participant with no
// role, gets none.
func (c *Checker) Resolve(ctx context.Context, userID, environmentID int64) (environments.CapabilityVector, error) {
	var adminID int64
	err := c.db.QueryRowContext(ctx, `
		SELECT administrator_id FROM environments WHERE id = $1
	`, environmentID).Scan(&adminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return environments.CapabilityVector{},
				apperrors.Errorf(apperrors.KindNotFound, "environment %d not found", environmentID)
		}
		return environments.CapabilityVector{}, fmt.Errorf("failed to resolve environment: %w", err)
	}

	if adminID == userID {
		return environments.CapabilityVector{View: true, Create: true, Edit: true, Delete: true}, nil
	}

	var v environments.CapabilityVector
	err = c.db.QueryRowContext(ctx, `
		SELECT r.can_view, r.can_create, r.can_edit, r.can_delete
		FROM participants p
		JOIN roles r ON r.id = p.role_id
		WHERE p.user_id = $1 AND p.environment_id = $2
	`, userID, environmentID).Scan(&v.View, &v.Create, &v.Edit, &v.Delete)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No resolved membership: fail closed.
			return environments.CapabilityVector{}, nil
		}
		return environments.CapabilityVector{}, fmt.Errorf("failed to resolve capabilities: %w", err)
	}
	return v, nil
}

// Check resolves the user's vector and tests the single required flag.
func (c *Checker) Check(ctx context.Context, userID, environmentID int64, capability Capability) (*Decision, error) {
	if !capability.Valid() {
		return nil, apperrors.Errorf(apperrors.KindValidation, "unknown capability %q", capability)
	}

	v, err := c.Resolve(ctx, userID, environmentID)
	if err != nil {
		return nil, err
	}

	decision := &Decision{Capability: capability, CheckedAt: time.Now()}
	switch capability {
	case CapabilityView:
		decision.Allowed = v.View
	case CapabilityCreate:
		decision.Allowed = v.Create
	case CapabilityEdit:
		decision.Allowed = v.Edit
	case CapabilityDelete:
		decision.Allowed = v.Delete
	}

	if decision.Allowed {
		decision.Reason = fmt.Sprintf("capability %s granted", capability)
	} else {
		decision.Reason = fmt.Sprintf("capability %s not granted", capability)
	}
	return decision, nil
}

// Require returns a permission error unless the user holds the
// capability in the environment.
func (c *Checker) Require(ctx context.Context, userID, environmentID int64, capability Capability) error {
	decision, err := c.Check(ctx, userID, environmentID, capability)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return apperrors.Errorf(apperrors.KindPermissionDenied,
			"you do not have %s permission in this environment", capability)
	}
	return nil
}

// RequireAdministrator rejects unless the user is the environment's
// owning administrator. Role capabilities never substitute for this
// check on environment-level settings operations.
func (c *Checker) RequireAdministrator(ctx context.Context, userID, environmentID int64) error {
	var adminID int64
	err := c.db.QueryRowContext(ctx, `
		SELECT administrator_id FROM environments WHERE id = $1
	`, environmentID).Scan(&adminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.Errorf(apperrors.KindNotFound, "environment %d not found", environmentID)
		}
		return fmt.Errorf("failed to resolve environment: %w", err)
	}
	if adminID != userID {
		return apperrors.New(apperrors.KindPermissionDenied,
			"only the environment administrator can perform this action")
	}
	return nil
}
