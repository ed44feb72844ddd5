// Package users provides the user directory backing authentication and
// the environment membership features.
package users

import (
	"context"
	"time"
)

// User is an account known to the system. Users are referenced by
// environments as owners, participants and invitation parties.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserRequest carries the fields needed to register a user.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// Service defines the user directory operations.
type Service interface {
	// CreateUser registers a new user. Usernames and emails are unique.
	CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error)

	// GetUser returns a user by ID.
	GetUser(ctx context.Context, id int64) (*User, error)

	// GetUserByEmail returns the user registered under the given email,
	// if any.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}
