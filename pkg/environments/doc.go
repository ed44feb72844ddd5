// Package environments implements the workspace core: environment CRUD
// with synchronous default-role provisioning, the per-environment role
// catalog with capability-vector classification, the membership
// directory with idempotent auto-provisioning, and the invitation
// lifecycle.
//
// Canonical roles (reader, editor, administrator) are shared, interned
// rows: at most one per name per environment. Custom roles are private
// to a single participant and are mutated in place when that
// participant's vector changes to another non-canonical combination.
//
// Uniqueness is enforced by storage constraints; concurrent callers
// that lose an insert race re-read the winning row instead of failing.
package environments
