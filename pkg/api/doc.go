// Package api exposes the HTTP surface: environment CRUD with
// permission management, the invitation lifecycle, guarded activity
// operations with allocation changes, and the notification inbox.
package api
