package drivers

// Capability bits of the packed encoding used by existing driver definitions
const (
	capMaxVolumeMask       = 0xff
	capNeedsRoot           = 1 << 8
	capNeedsScan           = 1 << 9
	capHardwareSearch      = 1 << 10
	capKnowsFrequency      = 1 << 11
	capKnowsVolume         = 1 << 12
	capMonoStereo          = 1 << 13
	capDetectsSignal       = 1 << 14
	capDetectsStereo       = 1 << 15
	capMaximizeVolumeFirst = 1 << 16
	capVolumeIndependent   = 1 << 17
)

// Capabilities declares which optional behaviours a card supports
type Capabilities struct {
	// MaxVolume is the highest volume step; zero means the card only knows on/off
	MaxVolume           uint8 `json:"max-volume" yaml:"max-volume"`
	NeedsRoot           bool  `json:"needs-root" yaml:"needs-root"`
	NeedsScan           bool  `json:"needs-scan" yaml:"needs-scan"`
	HardwareSearch      bool  `json:"hardware-search" yaml:"hardware-search"`
	KnowsFrequency      bool  `json:"knows-frequency" yaml:"knows-frequency"`
	KnowsVolume         bool  `json:"knows-volume" yaml:"knows-volume"`
	MonoStereo          bool  `json:"mono-stereo" yaml:"mono-stereo"`
	DetectsSignal       bool  `json:"detects-signal" yaml:"detects-signal"`
	DetectsStereo       bool  `json:"detects-stereo" yaml:"detects-stereo"`
	MaximizeVolumeFirst bool  `json:"maximize-volume-first" yaml:"maximize-volume-first"`
	VolumeIndependent   bool  `json:"volume-independent" yaml:"volume-independent"`
}

// MaxVolumeLevel returns the declared maximum volume, or 1 if none is declared
func (c Capabilities) MaxVolumeLevel() int {
	if c.MaxVolume == 0 {
		return 1
	}
	return int(c.MaxVolume)
}

// NeedsPrivilege reports whether hardware calls must run with elevated privileges
func (c Capabilities) NeedsPrivilege() bool {
	return c.NeedsRoot
}

// DetectsState reports whether the card can report signal or stereo state
func (c Capabilities) DetectsState() bool {
	return c.DetectsSignal || c.DetectsStereo
}

// Bits packs the capabilities into the stable bitmask encoding
func (c Capabilities) Bits() uint32 {
	bits := uint32(c.MaxVolume)

	flags := []struct {
		set bool
		bit uint32
	}{
		{c.NeedsRoot, capNeedsRoot},
		{c.NeedsScan, capNeedsScan},
		{c.HardwareSearch, capHardwareSearch},
		{c.KnowsFrequency, capKnowsFrequency},
		{c.KnowsVolume, capKnowsVolume},
		{c.MonoStereo, capMonoStereo},
		{c.DetectsSignal, capDetectsSignal},
		{c.DetectsStereo, capDetectsStereo},
		{c.MaximizeVolumeFirst, capMaximizeVolumeFirst},
		{c.VolumeIndependent, capVolumeIndependent},
	}
	for _, f := range flags {
		if f.set {
			bits |= f.bit
		}
	}

	return bits
}

// CapabilitiesFromBits unpacks a bitmask. Unknown bits are ignored.
func CapabilitiesFromBits(bits uint32) Capabilities {
	return Capabilities{
		MaxVolume:           uint8(bits & capMaxVolumeMask),
		NeedsRoot:           bits&capNeedsRoot != 0,
		NeedsScan:           bits&capNeedsScan != 0,
		HardwareSearch:      bits&capHardwareSearch != 0,
		KnowsFrequency:      bits&capKnowsFrequency != 0,
		KnowsVolume:         bits&capKnowsVolume != 0,
		MonoStereo:          bits&capMonoStereo != 0,
		DetectsSignal:       bits&capDetectsSignal != 0,
		DetectsStereo:       bits&capDetectsStereo != 0,
		MaximizeVolumeFirst: bits&capMaximizeVolumeFirst != 0,
		VolumeIndependent:   bits&capVolumeIndependent != 0,
	}
}
