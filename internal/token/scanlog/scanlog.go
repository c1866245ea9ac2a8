// Package scanlog tracks recently seen QR payload hashes. It backs replay
// detection beyond single-use consumption: a cloned payload scanned within
// the window is rejected even when it maps to a different token record.
package scanlog

import "context"

// Log records scan sightings per payload hash.
type Log interface {
	// Touch marks payloadHash as seen and reports whether it had already been
	// seen within the replay window. The mark-and-test is atomic so two
	// near-simultaneous scans cannot both pass.
	Touch(ctx context.Context, payloadHash string) (seen bool, err error)
}
