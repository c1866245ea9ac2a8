// Package store provides the scanner.Store persistence implementations.
package store

import "trustgate/internal/scanner"

var (
	_ scanner.Store = (*InMemory)(nil)
	_ scanner.Store = (*Postgres)(nil)
)
