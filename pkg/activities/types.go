package activities

import (
	"context"
	"time"
)

// Status represents activity status
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

// Activity is a unit of work tracked within an environment.
type Activity struct {
	ID            int64      `json:"id"`
	EnvironmentID int64      `json:"environment_id"`
	Description   string     `json:"description"`
	Status        Status     `json:"status"`
	Value         float64    `json:"value,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CreateActivityRequest carries the fields needed to create an
// activity.
type CreateActivityRequest struct {
	Description string     `json:"description"`
	Status      Status     `json:"status,omitempty"`
	Value       float64    `json:"value,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateActivityRequest carries optional activity updates.
type UpdateActivityRequest struct {
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Value       *float64   `json:"value,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// AllocationEvent describes a committed allocation change. AddedUserIDs
// holds the user IDs behind the participants newly present in the
// allocation set.
type AllocationEvent struct {
	Activity     *Activity
	AddedUserIDs []int64
}

// AllocationNotifier receives allocation events after the allocation
// set is persisted. Implementations must treat delivery as
// at-most-once: a failure does not roll the allocation back.
type AllocationNotifier interface {
	AllocationChanged(ctx context.Context, event *AllocationEvent) error
}

// AllocationChange reports the outcome of a SetAllocation call.
// NotificationErr carries a dispatch failure that did not affect the
// persisted allocation.
type AllocationChange struct {
	ActivityID      int64   `json:"activity_id"`
	Added           []int64 `json:"added"`
	Removed         []int64 `json:"removed"`
	NotificationErr string  `json:"notification_error,omitempty"`
}

// Service defines the activity operations.
type Service interface {
	// CreateActivity creates an activity in the environment.
	CreateActivity(ctx context.Context, environmentID int64, req *CreateActivityRequest) (*Activity, error)

	// GetActivity returns an activity by ID.
	GetActivity(ctx context.Context, id int64) (*Activity, error)

	// ListActivities returns the environment's activities newest first.
	ListActivities(ctx context.Context, environmentID int64) ([]*Activity, error)

	// UpdateActivity updates an activity's mutable fields.
	UpdateActivity(ctx context.Context, id int64, req *UpdateActivityRequest) (*Activity, error)

	// DeleteActivity deletes an activity; allocations cascade.
	DeleteActivity(ctx context.Context, id int64) error

	// SetAllocation replaces the activity's allocated-participant set
	// and notifies newly added members after the change commits.
	SetAllocation(ctx context.Context, activityID int64, participantIDs []int64) (*AllocationChange, error)

	// ListAllocation returns the participant IDs currently allocated to
	// the activity.
	ListAllocation(ctx context.Context, activityID int64) ([]int64, error)
}
