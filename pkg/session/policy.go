package session

import "github.com/jpnorenam/fmio/pkg/drivers"

// Policy is how volume is handled around a tune, derived from the capabilities
type Policy struct {
	MaxVolume int
	// MaximizeFirst asks for the maximum volume on a tune without an explicit volume
	MaximizeFirst bool
	// VolumeIndependent cards keep their volume across frequency changes
	VolumeIndependent bool
}

func PolicyFor(caps drivers.Capabilities) Policy {
	return Policy{
		MaxVolume:         caps.MaxVolumeLevel(),
		MaximizeFirst:     caps.MaximizeVolumeFirst,
		VolumeIndependent: caps.VolumeIndependent,
	}
}

// PreTuneVolume returns the volume to assert before the frequency is set, if any.
// requested is the volume the user asked for, nil when none was given.
func (p Policy) PreTuneVolume(requested *int) (int, bool) {
	if p.VolumeIndependent {
		return 0, false
	}

	if requested != nil {
		return *requested, true
	}
	if p.MaximizeFirst {
		return p.MaxVolume, true
	}
	return 1, true
}
