// Package store provides the token.Store persistence implementations.
package store

import "trustgate/internal/token"

var (
	_ token.Store = (*InMemory)(nil)
	_ token.Store = (*Postgres)(nil)
)
