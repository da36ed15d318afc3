package driver

import (
	"fmt"

	"github.com/jpnorenam/fmio/pkg/drivers"
	"github.com/jpnorenam/fmio/pkg/types"
	"github.com/spf13/cobra"
)

const groupID = "driver"

func Group(title string) *cobra.Group {
	return &cobra.Group{
		ID:    groupID,
		Title: title,
	}
}

// driverInfo is the printable form of a descriptor
type driverInfo struct {
	Name         string               `json:"name" yaml:"name"`
	Code         string               `json:"code" yaml:"code"`
	Variants     []variantInfo        `json:"variants,omitempty" yaml:"variants,omitempty"`
	Capabilities drivers.Capabilities `json:"capabilities" yaml:"capabilities"`
	Operations   []drivers.Operation  `json:"operations" yaml:"operations"`
}

type variantInfo struct {
	Driver string       `json:"driver" yaml:"driver"`
	Port   types.HexInt `json:"port" yaml:"port"`
}

func newDriverInfo(d *drivers.Descriptor) driverInfo {
	info := driverInfo{
		Name:         d.Name,
		Code:         d.Code,
		Capabilities: d.Caps,
		Operations:   d.Operations(),
	}
	for i, port := range d.Ports {
		info.Variants = append(info.Variants, variantInfo{
			Driver: d.SelectionName(i),
			Port:   types.HexInt(port),
		})
	}
	return info
}

// selectionNames returns every valid driver name, for completion
func selectionNames(registry *drivers.Registry) []cobra.Completion {
	var names []cobra.Completion
	for _, d := range registry.Descriptors() {
		for v := range d.Variants() {
			names = append(names, cobra.CompletionWithDesc(d.SelectionName(v), d.Name))
		}
	}
	return names
}

// portsText lists the ports of a descriptor as "0x20c, 0x30c"
func portsText(d *drivers.Descriptor) string {
	if len(d.Ports) == 0 {
		return "-"
	}
	text := ""
	for i, port := range d.Ports {
		if i > 0 {
			text += ", "
		}
		text += fmt.Sprintf("0x%x", port)
	}
	return text
}
