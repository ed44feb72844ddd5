package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/envboard/envboard/pkg/environments"
	"github.com/envboard/envboard/pkg/httputil"
	"github.com/envboard/envboard/pkg/middleware"
	"github.com/envboard/envboard/pkg/observability"
)

// InvitationHandlers handles the invitation lifecycle.
type InvitationHandlers struct {
	envs    environments.Service
	metrics *observability.Metrics
}

// NewInvitationHandlers creates a new InvitationHandlers.
func NewInvitationHandlers(envSvc environments.Service, metrics *observability.Metrics) *InvitationHandlers {
	return &InvitationHandlers{
		envs:    envSvc,
		metrics: metrics,
	}
}

// RegisterRoutes registers invitation routes.
func (h *InvitationHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/environments/{environmentID}/invitations", h.CreateInvitation).Methods("POST")
	router.HandleFunc("/invitations", h.ListInvitations).Methods("GET")
	router.HandleFunc("/invitations/{invitationID}/accept", h.AcceptInvitation).Methods("POST")
	router.HandleFunc("/invitations/{invitationID}/decline", h.DeclineInvitation).Methods("POST")
}

// CreateInvitation invites a registered user into an environment by
// email. Membership of the inviter is enforced by the service, not by
// the capability guard, so the error surfaces as a permission denial
// rather than a missing environment.
func (h *InvitationHandlers) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	environmentID, err := httputil.PathInt64(r, "environmentID")
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid environment ID")
		return
	}

	var req environments.CreateInvitationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	invitation, err := h.envs.CreateInvitation(r.Context(), user.ID, environmentID, &req)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	h.recordAction("created")
	httputil.WriteCreated(w, invitation)
}

// ListInvitations returns the caller's pending invitations.
func (h *InvitationHandlers) ListInvitations(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	invitations, err := h.envs.ListInvitations(r.Context(), user.ID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, invitations)
}

// AcceptInvitation accepts a pending invitation addressed to the
// caller and joins the environment.
func (h *InvitationHandlers) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	invitationID, err := httputil.PathInt64(r, "invitationID")
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid invitation ID")
		return
	}

	if err := h.envs.AcceptInvitation(r.Context(), user.ID, invitationID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	h.recordAction("accepted")
	httputil.WriteMessage(w, http.StatusOK, "invitation accepted")
}

// DeclineInvitation declines and deletes a pending invitation.
func (h *InvitationHandlers) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	invitationID, err := httputil.PathInt64(r, "invitationID")
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid invitation ID")
		return
	}

	if err := h.envs.DeclineInvitation(r.Context(), user.ID, invitationID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	h.recordAction("declined")
	httputil.WriteMessage(w, http.StatusOK, "invitation declined")
}

func (h *InvitationHandlers) recordAction(action string) {
	if h.metrics != nil {
		h.metrics.RecordInvitation(action)
	}
}
