package notifications

import (
	"context"
	"fmt"

	"github.com/envboard/envboard/pkg/activities"
	"github.com/envboard/envboard/pkg/observability"
)

// messagePreviewLimit caps the activity description embedded in a
// notification message.
const messagePreviewLimit = 50

// Dispatcher emits one notification per user newly allocated to an
// activity. It implements activities.AllocationNotifier.
type Dispatcher struct {
	store  Service
	logger *observability.Logger
}

// NewDispatcher creates a dispatcher over the notification store.
func NewDispatcher(store Service, logger *observability.Logger) *Dispatcher {
	return &Dispatcher{store: store, logger: logger}
}

// AllocationChanged creates one notification per newly added user. The
// allocation is already committed; a failed create is logged and
// reported, the remaining users are still attempted, and nothing is
// retried.
func (d *Dispatcher) AllocationChanged(ctx context.Context, event *activities.AllocationEvent) error {
	activity := event.Activity
	message := fmt.Sprintf("You were allocated to activity: %s", previewDescription(activity.Description))
	link := fmt.Sprintf("/environments/%d/activities/%d", activity.EnvironmentID, activity.ID)

	var firstErr error
	for _, userID := range event.AddedUserIDs {
		n := &Notification{
			UserID:        userID,
			Message:       message,
			Category:      CategoryActivityAllocation,
			Link:          link,
			ActivityID:    &activity.ID,
			EnvironmentID: &activity.EnvironmentID,
		}
		if err := d.store.CreateNotification(ctx, n); err != nil {
			if d.logger != nil {
				d.logger.WithError(err).Errorf("Failed to notify user %d of allocation to activity %d", userID, activity.ID)
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// previewDescription truncates the description to the preview limit,
// marking the cut with an ellipsis.
func previewDescription(description string) string {
	runes := []rune(description)
	if len(runes) <= messagePreviewLimit {
		return description
	}
	return string(runes[:messagePreviewLimit]) + "..."
}
