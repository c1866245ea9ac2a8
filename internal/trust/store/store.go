// Package store provides the trust.Store persistence implementations.
package store

import "trustgate/internal/trust"

var (
	_ trust.Store = (*InMemory)(nil)
	_ trust.Store = (*Postgres)(nil)
)
