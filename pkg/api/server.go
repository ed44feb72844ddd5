package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/envboard/envboard/pkg/access"
	"github.com/envboard/envboard/pkg/activities"
	"github.com/envboard/envboard/pkg/environments"
	"github.com/envboard/envboard/pkg/notifications"
	"github.com/envboard/envboard/pkg/observability"
	"github.com/envboard/envboard/pkg/users"
)

// Deps collects the services and infrastructure the API server wires
// into its handlers.
type Deps struct {
	Users         users.Service
	Environments  environments.Service
	Activities    activities.Service
	Notifications notifications.Service
	Checker       *access.Checker
	Logger        *observability.Logger
	Metrics       *observability.Metrics
}

// Server represents the API server.
type Server struct {
	router *mux.Router
	logger *observability.Logger
}

// NewServer creates a new API server and registers all routes.
func NewServer(deps Deps) *Server {
	s := &Server{
		router: mux.NewRouter(),
		logger: deps.Logger,
	}

	guard := access.NewMiddleware(deps.Checker)

	NewUserHandlers(deps.Users).RegisterRoutes(s.router)
	NewEnvironmentHandlers(deps.Environments, deps.Checker, guard, deps.Metrics).RegisterRoutes(s.router)
	NewInvitationHandlers(deps.Environments, deps.Metrics).RegisterRoutes(s.router)
	NewActivityHandlers(deps.Activities, guard).RegisterRoutes(s.router)
	NewNotificationHandlers(deps.Notifications).RegisterRoutes(s.router)

	return s
}

// Router exposes the underlying router so callers can attach
// server-wide middleware before serving.
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
