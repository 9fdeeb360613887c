// Package database opens and supervises the store connection behind the
// relation-aware models: DB_* overrides, lib/pq, pgx, MySQL and SQLite
// drivers on Bun, pool tuning, health checks that also read model tables,
// reconnects, query and slow-query hooks, and classification of driver
// errors.
package database
