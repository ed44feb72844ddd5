package notifications

import (
	"context"
	"time"
)

// Category types a notification.
type Category string

const (
	// CategoryActivityAllocation marks notifications emitted when a
	// user is newly allocated to an activity.
	CategoryActivityAllocation Category = "activity_allocation"
)

// Notification is an immutable in-app message addressed to one user.
// Only the read flag ever changes after creation.
type Notification struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Message       string    `json:"message"`
	Category      Category  `json:"category"`
	Link          string    `json:"link,omitempty"`
	ActivityID    *int64    `json:"activity_id,omitempty"`
	EnvironmentID *int64    `json:"environment_id,omitempty"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}

// Service defines the notification store operations.
type Service interface {
	// CreateNotification persists a new notification.
	CreateNotification(ctx context.Context, n *Notification) error

	// ListUnread returns the user's unread notifications newest first.
	ListUnread(ctx context.Context, userID int64) ([]*Notification, error)

	// MarkRead marks a single notification read.
	MarkRead(ctx context.Context, userID, notificationID int64) error

	// MarkAllRead marks all of the user's notifications read.
	MarkAllRead(ctx context.Context, userID int64) error

	// CountUnread returns the user's unread notification count.
	CountUnread(ctx context.Context, userID int64) (int, error)

	// PurgeRead deletes read notifications older than the cutoff and
	// returns the number deleted.
	PurgeRead(ctx context.Context, olderThan time.Time) (int64, error)
}
