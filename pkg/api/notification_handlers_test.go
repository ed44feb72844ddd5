package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envboard/envboard/pkg/apperrors"
	"github.com/envboard/envboard/pkg/notifications"
)

func TestListUnreadNotifications(t *testing.T) {
	svc := &mockNotificationService{
		ListUnreadFn: func(ctx context.Context, userID int64) ([]*notifications.Notification, error) {
			assert.Equal(t, int64(8), userID)
			return []*notifications.Notification{
				{ID: 2, UserID: userID, Message: "You were allocated to activity: Audit"},
				{ID: 1, UserID: userID, Message: "You were allocated to activity: Review"},
			}, nil
		},
	}
	h := NewNotificationHandlers(svc)

	req := newRequest(t, "GET", "/notifications", nil, testUser(8), nil)
	rec := httptest.NewRecorder()
	h.ListUnread(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var list []*notifications.Notification
	decodeBody(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ID)
}

func TestListUnreadNotifications_RequiresAuthentication(t *testing.T) {
	h := NewNotificationHandlers(&mockNotificationService{})

	req := newRequest(t, "GET", "/notifications", nil, nil, nil)
	rec := httptest.NewRecorder()
	h.ListUnread(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCountUnread(t *testing.T) {
	svc := &mockNotificationService{
		CountUnreadFn: func(ctx context.Context, userID int64) (int, error) {
			return 4, nil
		},
	}
	h := NewNotificationHandlers(svc)

	req := newRequest(t, "GET", "/notifications/unread-count", nil, testUser(8), nil)
	rec := httptest.NewRecorder()
	h.CountUnread(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UnreadCountResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 4, resp.Count)
}

func TestMarkRead(t *testing.T) {
	svc := &mockNotificationService{
		MarkReadFn: func(ctx context.Context, userID, notificationID int64) error {
			assert.Equal(t, int64(8), userID)
			assert.Equal(t, int64(2), notificationID)
			return nil
		},
	}
	h := NewNotificationHandlers(svc)

	req := newRequest(t, "POST", "/notifications/2/read", nil, testUser(8), map[string]string{"notificationID": "2"})
	rec := httptest.NewRecorder()
	h.MarkRead(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMarkRead_NotOwned(t *testing.T) {
	svc := &mockNotificationService{
		MarkReadFn: func(ctx context.Context, userID, notificationID int64) error {
			return apperrors.Errorf(apperrors.KindNotFound, "notification %d not found", notificationID)
		},
	}
	h := NewNotificationHandlers(svc)

	req := newRequest(t, "POST", "/notifications/2/read", nil, testUser(9), map[string]string{"notificationID": "2"})
	rec := httptest.NewRecorder()
	h.MarkRead(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkAllRead(t *testing.T) {
	called := false
	svc := &mockNotificationService{
		MarkAllReadFn: func(ctx context.Context, userID int64) error {
			called = true
			assert.Equal(t, int64(8), userID)
			return nil
		},
	}
	h := NewNotificationHandlers(svc)

	req := newRequest(t, "POST", "/notifications/read-all", nil, testUser(8), nil)
	rec := httptest.NewRecorder()
	h.MarkAllRead(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
