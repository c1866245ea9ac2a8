// Package store persists device-to-user sighting edges.
package store

import (
	"context"
	"time"

	id "trustgate/pkg/domain"
)

type Store interface {
	// Upsert records that userID presented deviceHash at the given time,
	// creating or refreshing the edge. Returns true when the device hash has
	// never been sighted before by any user.
	Upsert(ctx context.Context, deviceHash string, userID id.UserID, at time.Time) (newDevice bool, err error)

	// CountUsers reports how many distinct users have ever presented the device.
	CountUsers(ctx context.Context, deviceHash string) (int, error)

	// CountActiveDevices reports how many distinct devices the user has
	// presented since the given time.
	CountActiveDevices(ctx context.Context, userID id.UserID, since time.Time) (int, error)
}
