// Package activities manages activity records and their
// allocated-participant sets. Allocation changes report the diff
// against the previous set so the notification dispatcher can address
// newly added members only.
package activities
