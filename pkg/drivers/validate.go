package drivers

import (
	"fmt"
	"strings"
)

func validateDescriptors(descriptors []*Descriptor) error {
	codes := make(map[string]string)

	for i, d := range descriptors {
		if d == nil {
			return fmt.Errorf("descriptor %d is nil", i)
		}

		err := d.validate()
		if err != nil {
			return fmt.Errorf("invalid descriptor %q: %v", d.Code, err)
		}

		code := strings.ToLower(d.Code)
		if other, found := codes[code]; found {
			return fmt.Errorf("duplicate code %q: %s and %s", d.Code, other, d.Name)
		}
		codes[code] = d.Name
	}

	return nil
}

func (d *Descriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("required field is not set: name")
	}

	if d.Code == "" {
		return fmt.Errorf("required field is not set: code")
	}
	if strings.ContainsAny(d.Code, " \t\n") {
		return fmt.Errorf("code must not contain whitespace")
	}

	if d.Device == nil {
		return fmt.Errorf("required field is not set: device")
	}

	for i, port := range d.Ports {
		if port == 0 {
			return fmt.Errorf("port %d is zero", i+1)
		}
	}

	return d.Caps.validate(d)
}

// validate checks that every declared capability is backed by an operation
func (c Capabilities) validate(d *Descriptor) error {
	requirements := []struct {
		declared bool
		name     string
		ops      []Operation
	}{
		{c.HardwareSearch, "hardware-search", []Operation{OpSearch}},
		{c.KnowsFrequency, "knows-frequency", []Operation{OpGetFrequency}},
		{c.KnowsVolume, "knows-volume", []Operation{OpGetVolume}},
		{c.MonoStereo, "mono-stereo", []Operation{OpSetMono}},
		{c.DetectsSignal, "detects-signal", []Operation{OpGetState}},
		{c.DetectsStereo, "detects-stereo", []Operation{OpGetState}},
		{c.NeedsScan, "needs-scan", []Operation{OpSetFrequency, OpGetState}},
	}

	for _, r := range requirements {
		if !r.declared {
			continue
		}
		for _, op := range r.ops {
			if !d.Has(op) {
				return fmt.Errorf("capability %s requires operation %s", r.name, op)
			}
		}
	}

	return nil
}
