// Package store provides the noshow.Store persistence implementations.
package store

import "trustgate/internal/noshow"

var (
	_ noshow.Store = (*InMemory)(nil)
	_ noshow.Store = (*Postgres)(nil)
)
