package device

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trustgate/internal/device/store"
	id "trustgate/pkg/domain"
	dErrors "trustgate/pkg/domain-errors"
	"trustgate/pkg/requestcontext"
)

const (
	// MaxUsersPerDevice is how many distinct accounts may share one device
	// before the device is flagged.
	MaxUsersPerDevice = 3

	// MaxActiveDevices is how many devices one user may present within the
	// activity window before the sighting is flagged.
	MaxActiveDevices = 2

	// ActivityWindow bounds the simultaneous-device check.
	ActivityWindow = 30 * time.Minute
)

// Registry records device sightings and produces the device trust signal used
// during check-in scoring.
type Registry struct {
	store  store.Store
	logger *slog.Logger
}

type RegistryOption func(*Registry)

func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

func NewRegistry(st store.Store, opts ...RegistryOption) (*Registry, error) {
	if st == nil {
		return nil, fmt.Errorf("device store is required")
	}
	r := &Registry{store: st}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Record upserts the device-user edge and evaluates the sharing heuristics.
// A first sighting, a device shared beyond MaxUsersPerDevice, or a user active
// on more than MaxActiveDevices within the window each flag the observation.
func (r *Registry) Record(ctx context.Context, deviceHash string, userID id.UserID) (*Observation, error) {
	if deviceHash == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "device hash is required")
	}
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user is required")
	}

	now := requestcontext.Now(ctx)
	newDevice, err := r.store.Upsert(ctx, deviceHash, userID, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record device sighting")
	}

	users, err := r.store.CountUsers(ctx, deviceHash)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count device users")
	}
	active, err := r.store.CountActiveDevices(ctx, userID, now.Add(-ActivityWindow))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count active devices")
	}

	obs := &Observation{
		DeviceHash:    deviceHash,
		NewDevice:     newDevice,
		DistinctUsers: users,
		ActiveDevices: active,
	}
	if newDevice {
		obs.Flags = append(obs.Flags, FlagNewDevice)
	}
	if users > MaxUsersPerDevice {
		obs.Flags = append(obs.Flags, FlagSharedDevice)
	}
	if active > MaxActiveDevices {
		obs.Flags = append(obs.Flags, FlagSimultaneousDevices)
	}

	if !obs.Trusted() && r.logger != nil {
		r.logger.WarnContext(ctx, "device sighting flagged",
			"user_id", userID,
			"distinct_users", users,
			"active_devices", active,
			"flags", obs.Flags,
		)
	}
	return obs, nil
}
