// Package contextkeys provides centralized context key definitions
//
// All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
package contextkeys

// Key is the type for context keys to prevent collisions
type Key string

const (
	// UserKey contains the authenticated *users.User
	// Set by: middleware.AuthMiddleware (pkg/middleware/auth.go)
	// Required by: all protected endpoints, access middleware
	UserKey Key = "user"

	// EnvironmentKey contains the *environments.Environment resolved from the route
	// Set by: handlers that load the environment once per request
	EnvironmentKey Key = "environment"

	// RequestIDKey contains the request ID string (UUID)
	// Set by: middleware.RequestID
	// Used by: logger, response headers
	RequestIDKey Key = "request_id"

	// LoggerKey contains *observability.Logger scoped to the request
	// Set by: observability logging middleware
	LoggerKey Key = "logger"
)
