// Package detect probes every known card at every port it may use
package detect

import (
	"errors"

	"github.com/jpnorenam/fmio/pkg/diag"
	"github.com/jpnorenam/fmio/pkg/drivers"
	"github.com/jpnorenam/fmio/pkg/session"
	"github.com/jpnorenam/fmio/pkg/types"
)

type Detector struct {
	Registry *drivers.Registry
	Slot     *session.Slot
	// Progress is called after every probe step
	Progress func()
}

// Detect returns the cards found, in registry order. Diagnostics are silenced
// while probing since absent hardware fails in many ways.
func (d *Detector) Detect() ([]types.DetectedCard, error) {
	if d.Slot.Current() != nil {
		return nil, session.ErrSessionOpen
	}

	restore := diag.Silence()
	defer restore()

	var found []types.DetectedCard
	for _, descriptor := range d.Registry.Descriptors() {
		for variant := descriptor.Variants() - 1; variant >= 0; variant-- {
			selection := drivers.Selection{Descriptor: descriptor, Variant: variant}

			card, present, err := d.probe(selection)
			if errors.Is(err, session.ErrSessionOpen) {
				return nil, err
			}
			if err == nil && present {
				found = append(found, card)
			}
		}
	}

	return found, nil
}

func (d *Detector) step() {
	if d.Progress != nil {
		d.Progress()
	}
}

func (d *Detector) probe(selection drivers.Selection) (card types.DetectedCard, present bool, err error) {
	s, err := d.Slot.Open(selection)
	if err != nil {
		return card, false, err
	}
	defer func() {
		closeErr := s.Close()
		if err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	switch caps := s.Caps(); {
	case selection.Descriptor.Has(drivers.OpProbe):
		present, err = s.Probe()
		d.step()
	case caps.NeedsScan && caps.DetectsState():
		present, err = s.SweepForSignal(d.step)
	}
	if err != nil || !present {
		return card, false, err
	}

	card = types.DetectedCard{
		Name:   selection.Descriptor.Name,
		Driver: selection.Name(),
		Port:   types.HexInt(s.Address()),
	}
	return card, true, nil
}
