// Package cards defines the supported FM tuner cards
package cards

import (
	"errors"
	"time"

	"github.com/jpnorenam/fmio/pkg/drivers"
	"github.com/jpnorenam/fmio/pkg/pci"
	"github.com/jpnorenam/fmio/pkg/portio"
)

var ErrCardNotFound = errors.New("card not found")

// Hardware is what the cards need from the host
type Hardware struct {
	IO     portio.Space
	Perm   portio.Permissions
	Config pci.ConfigSpace
	// Sleep waits out protocol delays. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

func (hw Hardware) sleep(d time.Duration) {
	if hw.Sleep == nil {
		time.Sleep(d)
		return
	}
	hw.Sleep(d)
}

// Descriptors returns a fresh descriptor for every supported card, in
// registration order
func Descriptors(hw Hardware) []*drivers.Descriptor {
	return []*drivers.Descriptor{
		gemtekPCIDescriptor(hw, "Gemtek PCI", "gtp"),
		gemtekPCIDescriptor(hw, "Guillemot MaxiRadio FM2000", "mr"),
		radiotrackIIDescriptor(hw),
		zoltrixDescriptor(hw),
	}
}

// Registry returns the registry of all supported cards
func Registry(hw Hardware) (*drivers.Registry, error) {
	return drivers.NewRegistry(Descriptors(hw)...)
}

// PCIMatches returns the PCI ids of the supported PCI cards, by card name
func PCIMatches() map[string]pci.Match {
	return map[string]pci.Match{
		"Gemtek PCI":                 pci.DeviceMatch(gemtekVendorID, gemtekPR103ID),
		"Guillemot MaxiRadio FM2000": pci.DeviceMatch(gemtekVendorID, gemtekPR103ID),
	}
}
