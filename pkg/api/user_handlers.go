package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/envboard/envboard/pkg/httputil"
	"github.com/envboard/envboard/pkg/middleware"
	"github.com/envboard/envboard/pkg/users"
)

// UserHandlers handles user registration and profile requests.
type UserHandlers struct {
	users users.Service
}

// NewUserHandlers creates a new UserHandlers.
func NewUserHandlers(userSvc users.Service) *UserHandlers {
	return &UserHandlers{users: userSvc}
}

// RegisterRoutes registers user routes.
func (h *UserHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/users", h.CreateUser).Methods("POST")
	router.HandleFunc("/me", h.GetCurrentUser).Methods("GET")
}

// CreateUser registers a new user account. This is the one route that
// does not require an authenticated caller.
func (h *UserHandlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req users.CreateUserRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.CreateUser(r.Context(), &req)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteCreated(w, user)
}

// GetCurrentUser returns the authenticated caller's profile.
func (h *UserHandlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	httputil.WriteSuccess(w, user)
}
