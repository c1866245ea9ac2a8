package device

// Flag marks a suspicious device pattern observed while recording a sighting.
type Flag string

const (
	// FlagNewDevice marks the first sighting of a fingerprint.
	FlagNewDevice Flag = "new_device"
	// FlagSharedDevice marks a device used by more distinct accounts than allowed.
	FlagSharedDevice Flag = "shared_device"
	// FlagSimultaneousDevices marks a user active on too many devices at once.
	FlagSimultaneousDevices Flag = "simultaneous_devices"
)

// Observation is the trust signal produced by recording a device sighting.
// Trusted is false whenever any flag fires.
type Observation struct {
	DeviceHash    string
	NewDevice     bool
	DistinctUsers int
	ActiveDevices int
	Flags         []Flag
}

func (o *Observation) Trusted() bool {
	return len(o.Flags) == 0
}

func (o *Observation) Flagged(f Flag) bool {
	for _, got := range o.Flags {
		if got == f {
			return true
		}
	}
	return false
}
