package access

import (
	"net/http"

	"github.com/envboard/envboard/pkg/httputil"
	"github.com/envboard/envboard/pkg/middleware"
)

// Middleware provides request-time capability gating for
// environment-scoped routes.
type Middleware struct {
	checker *Checker
}

// NewMiddleware creates access middleware over the given checker.
func NewMiddleware(checker *Checker) *Middleware {
	return &Middleware{checker: checker}
}

// RequireCapability gates the wrapped handler on the user holding the
// capability in the environment named by the environmentID path
// variable.
func (m *Middleware) RequireCapability(capability Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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

			if err := m.checker.Require(r.Context(), user.ID, environmentID, capability); err != nil {
				httputil.WriteAppError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdministrator gates the wrapped handler on the user owning the
// environment named by the environmentID path variable.
func (m *Middleware) RequireAdministrator() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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

			if err := m.checker.RequireAdministrator(r.Context(), user.ID, environmentID); err != nil {
				httputil.WriteAppError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
