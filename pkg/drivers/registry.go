package drivers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidDriver = errors.New("invalid driver")

// Registry is the fixed, ordered set of known card descriptors
type Registry struct {
	descriptors []*Descriptor
}

// NewRegistry validates the descriptors and returns them as a registry.
// Registration order is the tie-break for name resolution.
func NewRegistry(descriptors ...*Descriptor) (*Registry, error) {
	if err := validateDescriptors(descriptors); err != nil {
		return nil, err
	}

	return &Registry{descriptors: descriptors}, nil
}

// Descriptors returns the registered descriptors in registration order
func (r *Registry) Descriptors() []*Descriptor {
	out := make([]*Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

func (r *Registry) Len() int {
	return len(r.descriptors)
}

// Selection is a resolved driver and port variant
type Selection struct {
	Descriptor *Descriptor
	Variant    int
}

// Port returns the port address of the selected variant
func (s Selection) Port() uint32 {
	return s.Descriptor.Port(s.Variant)
}

// Name returns the driver-selection token that resolves back to this selection
func (s Selection) Name() string {
	return s.Descriptor.SelectionName(s.Variant)
}

// Resolve matches name against the short codes as case-insensitive prefixes.
// A single-variant card needs the exact code. A card with several ports needs a
// 1-based variant number directly after the code, e.g. rtii2.
func (r *Registry) Resolve(name string) (Selection, error) {
	if name == "" {
		return Selection{}, fmt.Errorf("%w: empty name", ErrInvalidDriver)
	}

	for _, d := range r.descriptors {
		if variant, ok := matchVariant(d, name); ok {
			return Selection{Descriptor: d, Variant: variant}, nil
		}
	}

	return Selection{}, fmt.Errorf("%w: %q", ErrInvalidDriver, name)
}

// Lookup returns the descriptor with the given code
func (r *Registry) Lookup(code string) (*Descriptor, bool) {
	for _, d := range r.descriptors {
		if strings.EqualFold(d.Code, code) {
			return d, true
		}
	}
	return nil, false
}

func matchVariant(d *Descriptor, name string) (int, bool) {
	if len(name) < len(d.Code) || !strings.EqualFold(name[:len(d.Code)], d.Code) {
		return 0, false
	}
	rest := name[len(d.Code):]

	if len(d.Ports) <= 1 {
		return 0, rest == ""
	}

	if rest == "" || strings.TrimLeft(rest, "0123456789") != "" {
		return 0, false
	}
	k, err := strconv.Atoi(rest)
	if err != nil || k < 1 || k > len(d.Ports) {
		return 0, false
	}
	return k - 1, true
}
