// Package store provides the verification.Store persistence implementations.
package store

import "trustgate/internal/verification"

var (
	_ verification.Store = (*InMemory)(nil)
	_ verification.Store = (*Postgres)(nil)
)
