package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/envboard/envboard/pkg/httputil"
	"github.com/envboard/envboard/pkg/middleware"
	"github.com/envboard/envboard/pkg/notifications"
)

// NotificationHandlers handles the caller's notification inbox.
type NotificationHandlers struct {
	notifications notifications.Service
}

// NewNotificationHandlers creates a new NotificationHandlers.
func NewNotificationHandlers(notificationSvc notifications.Service) *NotificationHandlers {
	return &NotificationHandlers{notifications: notificationSvc}
}

// UnreadCountResponse carries an unread notification count.
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// RegisterRoutes registers notification routes.
func (h *NotificationHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/notifications", h.ListUnread).Methods("GET")
	router.HandleFunc("/notifications/unread-count", h.CountUnread).Methods("GET")
	router.HandleFunc("/notifications/read-all", h.MarkAllRead).Methods("POST")
	router.HandleFunc("/notifications/{notificationID}/read", h.MarkRead).Methods("POST")
}

// ListUnread returns the caller's unread notifications, newest first.
func (h *NotificationHandlers) ListUnread(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	list, err := h.notifications.ListUnread(r.Context(), user.ID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, list)
}

// CountUnread returns the caller's unread notification count.
func (h *NotificationHandlers) CountUnread(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	count, err := h.notifications.CountUnread(r.Context(), user.ID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, UnreadCountResponse{Count: count})
}

// MarkRead marks one of the caller's notifications read.
func (h *NotificationHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	notificationID, err := httputil.PathInt64(r, "notificationID")
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid notification ID")
		return
	}

	if err := h.notifications.MarkRead(r.Context(), user.ID, notificationID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "notification marked read")
}

// MarkAllRead marks all of the caller's notifications read.
func (h *NotificationHandlers) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.notifications.MarkAllRead(r.Context(), user.ID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "all notifications marked read")
}
