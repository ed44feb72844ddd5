// Package notifications stores in-app notification records and
// dispatches allocation-change notifications.
//
// Dispatch is at-most-once: the allocation change is already committed
// when the dispatcher runs, and a dispatch failure is surfaced to the
// caller without rolling the allocation back or retrying.
package notifications
