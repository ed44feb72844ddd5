package activities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/envboard/envboard/pkg/apperrors"
	"github.com/envboard/envboard/pkg/observability"
)

// PostgresService implements the Service interface using PostgreSQL.
type PostgresService struct {
	db       *sql.DB
	notifier AllocationNotifier
	logger   *observability.Logger
}

// NewPostgresService creates a new PostgreSQL-backed activity service.
// The notifier may be nil, in which case allocation changes are silent.
func NewPostgresService(db *sql.DB, notifier AllocationNotifier, logger *observability.Logger) *PostgresService {
	return &PostgresService{db: db, notifier: notifier, logger: logger}
}

// CreateActivity creates an activity in the environment.
func (s *PostgresService) CreateActivity(ctx context.Context, environmentID int64, req *CreateActivityRequest) (*Activity, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, apperrors.New(apperrors.KindValidation, "activity description is required")
	}
	status := req.Status
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		return nil, apperrors.Errorf(apperrors.KindValidation, "unknown activity status %q", status)
	}

	activity := &Activity{
		EnvironmentID: environmentID,
		Description:   description,
		Status:        status,
		Value:         req.Value,
		DueDate:       req.DueDate,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO activities (environment_id, description, status, value, due_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, activity.EnvironmentID, activity.Description, activity.Status, activity.Value, activity.DueDate).
		Scan(&activity.ID, &activity.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}
	return activity, nil
}

// GetActivity retrieves an activity by ID.
func (s *PostgresService) GetActivity(ctx context.Context, id int64) (*Activity, error) {
	activity := &Activity{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, environment_id, description, status, value, due_date, created_at
		FROM activities
		WHERE id = $1
	`, id).Scan(&activity.ID, &activity.EnvironmentID, &activity.Description,
		&activity.Status, &activity.Value, &activity.DueDate, &activity.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Errorf(apperrors.KindNotFound, "activity %d not found", id)
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return activity, nil
}

// ListActivities returns the environment's activities newest first.
func (s *PostgresService) ListActivities(ctx context.Context, environmentID int64) ([]*Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, environment_id, description, status, value, due_date, created_at
		FROM activities
		WHERE environment_id = $1
		ORDER BY created_at DESC, id DESC
	`, environmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []*Activity
	for rows.Next() {
		activity := &Activity{}
		if err := rows.Scan(&activity.ID, &activity.EnvironmentID, &activity.Description,
			&activity.Status, &activity.Value, &activity.DueDate, &activity.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

// UpdateActivity updates an activity's mutable fields.
func (s *PostgresService) UpdateActivity(ctx context.Context, id int64, req *UpdateActivityRequest) (*Activity, error) {
	activity, err := s.GetActivity(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, apperrors.New(apperrors.KindValidation, "activity description is required")
		}
		activity.Description = description
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperrors.Errorf(apperrors.KindValidation, "unknown activity status %q", *req.Status)
		}
		activity.Status = *req.Status
	}
	if req.Value != nil {
		activity.Value = *req.Value
	}
	if req.DueDate != nil {
		activity.DueDate = req.DueDate
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE activities SET description = $1, status = $2, value = $3, due_date = $4
		WHERE id = $5
	`, activity.Description, activity.Status, activity.Value, activity.DueDate, activity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}
	return activity, nil
}

// DeleteActivity deletes an activity.
func (s *PostgresService) DeleteActivity(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.Errorf(apperrors.KindNotFound, "activity %d not found", id)
	}
	return nil
}

// SetAllocation replaces the activity's allocated-participant set. The
// diff against the previous set is persisted in one transaction; the
// notifier then receives the added members. A notifier failure is
// logged and reported on the result but never rolls the committed
// allocation back.
func (s *PostgresService) SetAllocation(ctx context.Context, activityID int64, participantIDs []int64) (*AllocationChange, error) {
	activity, err := s.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}

	previous, err := s.ListAllocation(ctx, activityID)
	if err != nil {
		return nil, err
	}

	next := uniqueIDs(participantIDs)
	added, removed := diffSets(previous, next)

	change := &AllocationChange{ActivityID: activityID, Added: added, Removed: removed}
	if len(added) == 0 && len(removed) == 0 {
		return change, nil
	}

	// Added participants must belong to the activity's environment.
	addedUserIDs := make([]int64, 0, len(added))
	for _, id := range added {
		var userID, environmentID int64
		err := s.db.QueryRowContext(ctx, `
			SELECT user_id, environment_id FROM participants WHERE id = $1
		`, id).Scan(&userID, &environmentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperrors.Errorf(apperrors.KindNotFound, "participant %d not found", id)
			}
			return nil, fmt.Errorf("failed to resolve participant: %w", err)
		}
		if environmentID != activity.EnvironmentID {
			return nil, apperrors.Errorf(apperrors.KindValidation,
				"participant %d does not belong to this environment", id)
		}
		addedUserIDs = append(addedUserIDs, userID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range removed {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM activity_allocations WHERE activity_id = $1 AND participant_id = $2
		`, activityID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to remove allocation: %w", err)
		}
	}
	for _, id := range added {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO activity_allocations (activity_id, participant_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, activityID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to add allocation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit allocation change: %w", err)
	}

	if s.notifier != nil && len(added) > 0 {
		event := &AllocationEvent{Activity: activity, AddedUserIDs: addedUserIDs}
		if err := s.notifier.AllocationChanged(ctx, event); err != nil {
			if s.logger != nil {
				s.logger.WithError(err).Errorf("Failed to dispatch allocation notifications for activity %d", activityID)
			}
			change.NotificationErr = err.Error()
		}
	}
	return change, nil
}

// ListAllocation returns the participant IDs currently allocated to the
// activity.
func (s *PostgresService) ListAllocation(ctx context.Context, activityID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT participant_id FROM activity_allocations
		WHERE activity_id = $1
		ORDER BY participant_id
	`, activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func diffSets(previous, next []int64) (added, removed []int64) {
	prevSet := make(map[int64]struct{}, len(previous))
	for _, id := range previous {
		prevSet[id] = struct{}{}
	}
	nextSet := make(map[int64]struct{}, len(next))
	for _, id := range next {
		nextSet[id] = struct{}{}
	}

	for _, id := range next {
		if _, ok := prevSet[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range previous {
		if _, ok := nextSet[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}
