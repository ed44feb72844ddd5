// Package apperrors defines the typed error taxonomy shared by all services:
// validation, conflict, permission denied, and not found. Services build
// errors with New/Errorf/Wrap and callers branch on the kind via KindOf or
// the Is* helpers instead of matching message strings.
package apperrors
