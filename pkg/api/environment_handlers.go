package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/envboard/envboard/pkg/access"
	"github.com/envboard/envboard/pkg/environments"
	"github.com/envboard/envboard/pkg/httputil"
	"github.com/envboard/envboard/pkg/middleware"
	"github.com/envboard/envboard/pkg/observability"
)

// EnvironmentHandlers handles environment, membership and permission
// HTTP requests.
type EnvironmentHandlers struct {
	envs    environments.Service
	checker *access.Checker
	guard   *access.Middleware
	metrics *observability.Metrics
}

// NewEnvironmentHandlers creates a new EnvironmentHandlers.
func NewEnvironmentHandlers(envSvc environments.Service, checker *access.Checker, guard *access.Middleware, metrics *observability.Metrics) *EnvironmentHandlers {
	return &EnvironmentHandlers{
		envs:    envSvc,
		checker: checker,
		guard:   guard,
		metrics: metrics,
	}
}

// RegisterRoutes registers environment routes.
func (h *EnvironmentHandlers) RegisterRoutes(router *mux.Router) {
	view := h.guard.RequireCapability(access.CapabilityView)
	admin := h.guard.RequireAdministrator()

	router.HandleFunc("/environments", h.CreateEnvironment).Methods("POST")
	router.HandleFunc("/environments", h.ListEnvironments).Methods("GET")
	router.Handle("/environments/{environmentID}", view(http.HandlerFunc(h.GetEnvironment))).Methods("GET")
	router.Handle("/environments/{environmentID}", admin(http.HandlerFunc(h.UpdateEnvironment))).Methods("PUT")
	router.Handle("/environments/{environmentID}", admin(http.HandlerFunc(h.DeleteEnvironment))).Methods("DELETE")

	// Membership
	router.Handle("/environments/{environmentID}/members", view(http.HandlerFunc(h.ListMembers))).Methods("GET")

	// Permissions
	router.Handle("/environments/{environmentID}/participants/{participantID}/permissions", view(http.HandlerFunc(h.GetPermissions))).Methods("GET")
	router.Handle("/environments/{environmentID}/participants/{participantID}/permissions", admin(http.HandlerFunc(h.SetPermissions))).Methods("PUT")

	// Capability probe for the caller's own access
	router.HandleFunc("/environments/{environmentID}/capabilities/{capability}", h.CheckCapability).Methods("GET")
}

// CreateEnvironment creates an environment owned by the caller.
func (h *EnvironmentHandlers) CreateEnvironment(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req environments.CreateEnvironmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	env, err := h.envs.CreateEnvironment(r.Context(), user.ID, &req)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteCreated(w, env)
}

// ListEnvironments lists the environments the caller administers or
// participates in.
func (h *EnvironmentHandlers) ListEnvironments(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	envs, err := h.envs.ListEnvironments(r.Context(), user.ID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, envs)
}

// GetEnvironment returns a single environment.
func (h *EnvironmentHandlers) GetEnvironment(w http.ResponseWriter, r *http.Request) {
	environmentID, err := httputil.PathInt64(r, "environmentID")
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid environment ID")
		return
	}

	env, err := h.envs.GetEnvironment(r.Context(), environmentID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, env)
}

// UpdateEnvironment updates an environment's name and color.
func (h *EnvironmentHandlers) UpdateEnvironment(w http.ResponseWriter, r *http.Request) {
	environmentID, err := httputil.PathInt64(r, "environmentID")
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid environment ID")
		return
	}

	var req environments.UpdateEnvironmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	env, err := h.envs.UpdateEnvironment(r.Context(), environmentID, &req)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, env)
}

// DeleteEnvironment deletes an environment and everything scoped to it.
func (h *EnvironmentHandlers) DeleteEnvironment(w http.ResponseWriter, r *http.Request) {
	environmentID, err := httputil.PathInt64(r, "environmentID")
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid environment ID")
		return
	}

	if err := h.envs.DeleteEnvironment(r.Context(), environmentID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

// ListMembers lists the environment's effective members.
func (h *EnvironmentHandlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	environmentID, err := httputil.PathInt64(r, "environmentID")
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid environment ID")
		return
	}

	members, err := h.envs.ListEffectiveMembers(r.Context(), environmentID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, members)
}

// GetPermissions returns a participant's role name and capability
// flags.
func (h *EnvironmentHandlers) GetPermissions(w http.ResponseWriter, r *http.Request) {
	environmentID, err := httputil.PathInt64(r, "environmentID")
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid environment ID")
		return
	}
	participantID, err := httputil.PathInt64(r, "participantID")
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid participant ID")
		return
	}

	assignment, err := h.envs.GetPermissions(r.Context(), environmentID, participantID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, assignment)
}

// SetPermissions applies a capability vector to a participant,
// reclassifying its role.
func (h *EnvironmentHandlers) SetPermissions(w http.ResponseWriter, r *http.Request) {
	environmentID, err := httputil.PathInt64(r, "environmentID")
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid environment ID")
		return
	}
	participantID, err := httputil.PathInt64(r, "participantID")
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid participant ID")
		return
	}

	var vector environments.CapabilityVector
	if err := httputil.DecodeJSON(r, &vector); err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assignment, err := h.envs.ApplyPermissions(r.Context(), environmentID, participantID, vector)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, assignment)
}

// CheckCapability resolves the caller's own access for one capability
// and returns the decision without enforcing it.
func (h *EnvironmentHandlers) CheckCapability(w http.ResponseWriter, r *http.Request) {
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
	capability := access.Capability(mux.Vars(r)["capability"])

	decision, err := h.checker.Check(r.Context(), user.ID, environmentID, capability)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordPermissionCheck(string(capability), decision.Allowed)
	}
	httputil.WriteSuccess(w, decision)
}
