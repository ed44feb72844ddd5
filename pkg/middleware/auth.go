package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/envboard/envboard/pkg/contextkeys"
	"github.com/envboard/envboard/pkg/users"
)

// UserIDHeader carries the authenticated user's ID, set by the upstream
// gateway after session validation.
const UserIDHeader = "X-User-ID"

// AuthMiddleware resolves the upstream-supplied identity header into a
// user record on the request context.
type AuthMiddleware struct {
	users    users.Service
	optional bool
}

// NewAuthMiddleware creates authentication middleware. With optional
// set, requests without an identity header pass through anonymously.
func NewAuthMiddleware(userSvc users.Service, optional bool) *AuthMiddleware {
	return &AuthMiddleware{users: userSvc, optional: optional}
}

// Handler wraps an HTTP handler with identity resolution.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(UserIDHeader)
		if header == "" {
			if m.optional {
				next.ServeHTTP(w, r)
				return
			}
			m.unauthorizedResponse(w, "missing identity header")
			return
		}

		userID, err := strconv.ParseInt(header, 10, 64)
		if err != nil {
			m.unauthorizedResponse(w, "invalid identity header")
			return
		}

		user, err := m.users.GetUser(r.Context(), userID)
		if err != nil {
			m.unauthorizedResponse(w, "unknown user")
			return
		}
		if !user.IsActive {
			m.unauthorizedResponse(w, "user is deactivated")
			return
		}

		ctx := context.WithValue(r.Context(), contextkeys.UserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) unauthorizedResponse(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

// GetUser extracts the authenticated user from the request, or nil.
func GetUser(r *http.Request) *users.User {
	v := r.Context().Value(contextkeys.UserKey)
	if v == nil {
		return nil
	}
	user, ok := v.(*users.User)
	if !ok {
		return nil
	}
	return user
}
