// Package store provides the reward.Store persistence implementations.
package store

import "trustgate/internal/reward"

var (
	_ reward.Store = (*InMemory)(nil)
	_ reward.Store = (*Postgres)(nil)
)
