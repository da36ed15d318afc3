package types

// DetectedCard is one driver and port combination found present by detection
type DetectedCard struct {
	Name   string `json:"name" yaml:"name"`
	Driver string `json:"driver" yaml:"driver"`
	Port   HexInt `json:"port,omitempty" yaml:"port,omitempty"`
}

// TunerInfo is a snapshot of what an opened tuner is able to report about itself.
// Pointer fields are nil when the hardware cannot report them.
type TunerInfo struct {
	Driver    string     `json:"driver" yaml:"driver"`
	Port      HexInt     `json:"port,omitempty" yaml:"port,omitempty"`
	Frequency *Frequency `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	Volume    *int       `json:"volume,omitempty" yaml:"volume,omitempty"`
	Signal    *bool      `json:"signal,omitempty" yaml:"signal,omitempty"`
	Stereo    *bool      `json:"stereo,omitempty" yaml:"stereo,omitempty"`
}
