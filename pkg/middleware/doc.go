// Package middleware provides the HTTP middleware chain: upstream
// identity resolution, request IDs, and in-memory or Redis-backed rate
// limiting.
package middleware
