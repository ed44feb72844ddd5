package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/envboard/envboard/pkg/access"
	"github.com/envboard/envboard/pkg/activities"
	"github.com/envboard/envboard/pkg/apperrors"
	"github.com/envboard/envboard/pkg/httputil"
)

// ActivityHandlers handles activity and allocation HTTP requests. All
// routes are environment-scoped and pass through the capability guard.
type ActivityHandlers struct {
	activities activities.Service
	guard      *access.Middleware
}

// NewActivityHandlers creates a new ActivityHandlers.
func NewActivityHandlers(activitySvc activities.Service, guard *access.Middleware) *ActivityHandlers {
	return &ActivityHandlers{
		activities: activitySvc,
		guard:      guard,
	}
}

// SetAllocationRequest carries the replacement participant set for an
// activity.
type SetAllocationRequest struct {
	ParticipantIDs []int64 `json:"participant_ids"`
}

// RegisterRoutes registers activity routes.
func (h *ActivityHandlers) RegisterRoutes(router *mux.Router) {
	view := h.guard.RequireCapability(access.CapabilityView)
	create := h.guard.RequireCapability(access.CapabilityCreate)
	edit := h.guard.RequireCapability(access.CapabilityEdit)
	del := h.guard.RequireCapability(access.CapabilityDelete)

	router.Handle("/environments/{environmentID}/activities", create(http.HandlerFunc(h.CreateActivity))).Methods("POST")
	router.Handle("/environments/{environmentID}/activities", view(http.HandlerFunc(h.ListActivities))).Methods("GET")
	router.Handle("/environments/{environmentID}/activities/{activityID}", view(http.HandlerFunc(h.GetActivity))).Methods("GET")
	router.Handle("/environments/{environmentID}/activities/{activityID}", edit(http.HandlerFunc(h.UpdateActivity))).Methods("PUT")
	router.Handle("/environments/{environmentID}/activities/{activityID}", del(http.HandlerFunc(h.DeleteActivity))).Methods("DELETE")

	// Allocation
	router.Handle("/environments/{environmentID}/activities/{activityID}/allocation", edit(http.HandlerFunc(h.SetAllocation))).Methods("PUT")
	router.Handle("/environments/{environmentID}/activities/{activityID}/allocation", view(http.HandlerFunc(h.ListAllocation))).Methods("GET")
}

// CreateActivity creates an activity in the environment.
func (h *ActivityHandlers) CreateActivity(w http.ResponseWriter, r *http.Request) {
	environmentID, err := httputil.PathInt64(r, "environmentID")
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid environment ID")
		return
	}

	var req activities.CreateActivityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	activity, err := h.activities.CreateActivity(r.Context(), environmentID, &req)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteCreated(w, activity)
}

// ListActivities lists the environment's activities.
func (h *ActivityHandlers) ListActivities(w http.ResponseWriter, r *http.Request) {
	environmentID, err := httputil.PathInt64(r, "environmentID")
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid environment ID")
		return
	}

	list, err := h.activities.ListActivities(r.Context(), environmentID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, list)
}

// GetActivity returns a single activity.
func (h *ActivityHandlers) GetActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.activityInEnvironment(r)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, activity)
}

// UpdateActivity updates an activity's mutable fields.
func (h *ActivityHandlers) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.activityInEnvironment(r)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	var req activities.UpdateActivityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.activities.UpdateActivity(r.Context(), activity.ID, &req)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, updated)
}

// DeleteActivity deletes an activity.
func (h *ActivityHandlers) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.activityInEnvironment(r)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	if err := h.activities.DeleteActivity(r.Context(), activity.ID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

// SetAllocation replaces the activity's allocated participants.
func (h *ActivityHandlers) SetAllocation(w http.ResponseWriter, r *http.Request) {
	activity, err := h.activityInEnvironment(r)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	var req SetAllocationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	change, err := h.activities.SetAllocation(r.Context(), activity.ID, req.ParticipantIDs)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, change)
}

// ListAllocation returns the participant IDs allocated to the
// activity.
func (h *ActivityHandlers) ListAllocation(w http.ResponseWriter, r *http.Request) {
	activity, err := h.activityInEnvironment(r)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	ids, err := h.activities.ListAllocation(r.Context(), activity.ID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, ids)
}

// activityInEnvironment loads the activity from the path and confirms
// it belongs to the environment the guard authorized. An activity
// reached through the wrong environment reads as missing.
func (h *ActivityHandlers) activityInEnvironment(r *http.Request) (*activities.Activity, error) {
	environmentID, err := httputil.PathInt64(r, "environmentID")
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid environment ID")
	}
	activityID, err := httputil.PathInt64(r, "activityID")
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid activity ID")
	}

	activity, err := h.activities.GetActivity(r.Context(), activityID)
	if err != nil {
		return nil, err
	}
	if activity.EnvironmentID != environmentID {
		return nil, apperrors.Errorf(apperrors.KindNotFound, "activity %d not found", activityID)
	}
	return activity, nil
}
