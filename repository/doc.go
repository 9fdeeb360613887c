// Package repository provides the table-bound Model: relation-aware reads
// with pagination and a decoupled count, single-row lookups, narrow read
// helpers, and insert, edit-or-upsert, increment/decrement and soft delete.
package repository
