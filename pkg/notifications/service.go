package notifications

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/envboard/envboard/pkg/apperrors"
)

// PostgresService implements the Service interface using PostgreSQL.
type PostgresService struct {
	db *sql.DB
}

// NewPostgresService creates a new PostgreSQL-backed notification
// service.
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{db: db}
}

// CreateNotification persists a new notification.
func (s *PostgresService) CreateNotification(ctx context.Context, n *Notification) error {
	if n.UserID == 0 {
		return apperrors.New(apperrors.KindValidation, "notification user is required")
	}
	if n.Message == "" {
		return apperrors.New(apperrors.KindValidation, "notification message is required")
	}
	if n.Category == "" {
		n.Category = CategoryActivityAllocation
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO notifications (user_id, message, category, link, activity_id, environment_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, n.UserID, n.Message, n.Category, n.Link, n.ActivityID, n.EnvironmentID).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListUnread returns the user's unread notifications newest first.
func (s *PostgresService) ListUnread(ctx context.Context, userID int64) ([]*Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, message, category, link, activity_id, environment_id, read, created_at
		FROM notifications
		WHERE user_id = $1 AND NOT read
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n := &Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Category, &n.Link,
			&n.ActivityID, &n.EnvironmentID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead marks a single notification read. The user scoping keeps one
// user from touching another's notifications.
func (s *PostgresService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check mark result: %w", err)
	}
	if affected == 0 {
		return apperrors.Errorf(apperrors.KindNotFound, "notification %d not found", notificationID)
	}
	return nil
}

// MarkAllRead marks all of the user's notifications read.
func (s *PostgresService) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE user_id = $1 AND NOT read
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// CountUnread returns the user's unread notification count.
func (s *PostgresService) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND NOT read
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// PurgeRead deletes read notifications older than the cutoff. Unread
// notifications are kept regardless of age.
func (s *PostgresService) PurgeRead(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM notifications
		WHERE read AND created_at < $1
	`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check purge result: %w", err)
	}
	return deleted, nil
}
