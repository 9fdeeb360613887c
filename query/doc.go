// Package query compiles relation descriptors, projections and search phrases
// into parameterised PostgreSQL fragments that bun can format and execute.
package query
