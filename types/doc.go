// Package types holds the request and result envelopes shared by models,
// the sort order enum, JSON column types and the serialisable request spec.
package types
