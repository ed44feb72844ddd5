// Package access resolves effective capabilities for a user within an
// environment and gates mutating operations.
//
// Resolution is read-through with no cache: every check re-reads the
// committed participant and role rows. The environment's owning
// administrator unconditionally holds all four capabilities; anyone
// else resolves through their participant row's role and fails closed
// when no resolved membership exists.
package access
