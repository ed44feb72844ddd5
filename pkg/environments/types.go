package environments

import (
	"context"
	"time"

	"github.com/envboard/envboard/pkg/users"
)

// RoleName identifies a permission bundle within an environment.
type RoleName string

const (
	RoleReader        RoleName = "reader"
	RoleEditor        RoleName = "editor"
	RoleAdministrator RoleName = "administrator"
	RoleCustom        RoleName = "custom"
)

// CapabilityVector is the four boolean capability flags a role grants.
type CapabilityVector struct {
	View   bool `json:"view"`
	Create bool `json:"create"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

// Classify reduces a capability vector to its canonical role name.
// Any combination that is not exactly one of the three canonical
// bundles, including vectors without view, classifies as custom.
func Classify(v CapabilityVector) RoleName {
	switch v {
	case CapabilityVector{View: true}:
		return RoleReader
	case CapabilityVector{View: true, Create: true, Edit: true}:
		return RoleEditor
	case CapabilityVector{View: true, Create: true, Edit: true, Delete: true}:
		return RoleAdministrator
	default:
		return RoleCustom
	}
}

// DefaultVector returns the canonical flags for a role name. Custom has
// no canonical flags and returns the zero vector.
func DefaultVector(name RoleName) CapabilityVector {
	switch name {
	case RoleReader:
		return CapabilityVector{View: true}
	case RoleEditor:
		return CapabilityVector{View: true, Create: true, Edit: true}
	case RoleAdministrator:
		return CapabilityVector{View: true, Create: true, Edit: true, Delete: true}
	default:
		return CapabilityVector{}
	}
}

// Environment is a tenant workspace. The creating user becomes the
// owning administrator permanently; there is no transfer operation.
type Environment struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Color           string    `json:"color,omitempty"`
	AdministratorID int64     `json:"administrator_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// Role is a named permission bundle scoped to one environment.
type Role struct {
	ID            int64            `json:"id"`
	EnvironmentID int64            `json:"environment_id"`
	Name          RoleName         `json:"name"`
	Capabilities  CapabilityVector `json:"capabilities"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Participant binds a user to an environment with an optional role.
// A participant with no role has zero capabilities until one is
// assigned.
type Participant struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	EnvironmentID int64     `json:"environment_id"`
	RoleID        *int64    `json:"role_id,omitempty"`
	JoinedAt      time.Time `json:"joined_at"`
}

// Invitation is a pending offer of environment membership. It is
// deleted outright on decline; no history remains.
type Invitation struct {
	ID            int64     `json:"id"`
	EnvironmentID int64     `json:"environment_id"`
	Email         string    `json:"email"`
	Token         string    `json:"token,omitempty"`
	InviterID     int64     `json:"inviter_id"`
	GuestID       int64     `json:"guest_id"`
	Accepted      bool      `json:"accepted"`
	CreatedAt     time.Time `json:"created_at"`
}

// EffectiveMember pairs a user from the environment's participant set
// with its resolved membership record.
type EffectiveMember struct {
	User        *users.User  `json:"user"`
	Participant *Participant `json:"participant"`
	Role        *Role        `json:"role,omitempty"`
}

// CreateEnvironmentRequest carries the fields needed to create an
// environment.
type CreateEnvironmentRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// UpdateEnvironmentRequest carries optional environment updates.
type UpdateEnvironmentRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// CreateInvitationRequest carries the guest email for a new invitation.
type CreateInvitationRequest struct {
	Email string `json:"email"`
}

// PermissionAssignment reports the outcome of applying a capability
// vector to a participant.
type PermissionAssignment struct {
	ParticipantID int64            `json:"participant_id"`
	RoleID        int64            `json:"role_id"`
	RoleName      RoleName         `json:"role_name"`
	Capabilities  CapabilityVector `json:"capabilities"`
}

// Service defines the environment, role catalog, membership and
// invitation operations.
type Service interface {
	// CreateEnvironment creates an environment owned by creatorID and
	// provisions the three default roles before returning.
	CreateEnvironment(ctx context.Context, creatorID int64, req *CreateEnvironmentRequest) (*Environment, error)

	// GetEnvironment returns an environment by ID.
	GetEnvironment(ctx context.Context, id int64) (*Environment, error)

	// ListEnvironments returns the environments the user administers or
	// participates in.
	ListEnvironments(ctx context.Context, userID int64) ([]*Environment, error)

	// UpdateEnvironment updates name and color. Administrator only,
	// enforced by the caller.
	UpdateEnvironment(ctx context.Context, id int64, req *UpdateEnvironmentRequest) (*Environment, error)

	// DeleteEnvironment deletes the environment; roles, participants,
	// invitations, activities and allocations cascade.
	DeleteEnvironment(ctx context.Context, id int64) error

	// GetRole returns a role by ID.
	GetRole(ctx context.Context, id int64) (*Role, error)

	// ApplyPermissions classifies the vector and assigns the resulting
	// role to the participant, interning canonical roles and keeping
	// custom roles private to the participant.
	ApplyPermissions(ctx context.Context, environmentID, participantID int64, vector CapabilityVector) (*PermissionAssignment, error)

	// GetPermissions returns the participant's current role name and
	// capability flags.
	GetPermissions(ctx context.Context, environmentID, participantID int64) (*PermissionAssignment, error)

	// EnsureParticipant returns the participant row for (user,
	// environment), creating it with the reader role when absent. Safe
	// to call repeatedly.
	EnsureParticipant(ctx context.Context, userID, environmentID int64) (*Participant, error)

	// GetParticipant returns a participant row by ID.
	GetParticipant(ctx context.Context, id int64) (*Participant, error)

	// InParticipantSet reports whether the user belongs to the
	// environment's participant set.
	InParticipantSet(ctx context.Context, userID, environmentID int64) (bool, error)

	// ListEffectiveMembers enumerates the participant set, backfilling
	// missing participant rows before returning.
	ListEffectiveMembers(ctx context.Context, environmentID int64) ([]*EffectiveMember, error)

	// CreateInvitation validates and creates a pending invitation from
	// inviterID to the guest identified by email.
	CreateInvitation(ctx context.Context, inviterID, environmentID int64, req *CreateInvitationRequest) (*Invitation, error)

	// GetInvitation returns an invitation by ID.
	GetInvitation(ctx context.Context, id int64) (*Invitation, error)

	// ListInvitations returns the pending invitations addressed to the
	// user.
	ListInvitations(ctx context.Context, guestID int64) ([]*Invitation, error)

	// AcceptInvitation adds the guest to the participant set, marks the
	// invitation accepted and provisions the participant row.
	AcceptInvitation(ctx context.Context, actingUserID, invitationID int64) error

	// DeclineInvitation deletes the invitation outright.
	DeclineInvitation(ctx context.Context, actingUserID, invitationID int64) error
}
