// Package storage handles database connectivity: PostgreSQL connection setup,
// the versioned migration runner, and the Redis client used by the
// rate-limiting middleware. Domain packages own their schema by exporting
// Migrations() slices that cmd wiring feeds to RunMigrations.
package storage
