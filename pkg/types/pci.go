package types

import "fmt"

type PciDevice struct {
	Slot        string  `json:"slot" yaml:"slot"`
	BusNumber   uint8   `json:"bus-number" yaml:"bus-number"`
	Device      uint8   `json:"device" yaml:"device"`
	Function    uint8   `json:"function" yaml:"function"`
	DeviceClass HexInt  `json:"device-class" yaml:"device-class"`
	Revision    HexInt  `json:"revision" yaml:"revision"`
	VendorId    HexInt  `json:"vendor-id" yaml:"vendor-id"`
	DeviceId    HexInt  `json:"device-id" yaml:"device-id"`
	SubvendorId *HexInt `json:"subvendor-id,omitempty" yaml:"subvendor-id,omitempty"`
	SubdeviceId *HexInt `json:"subdevice-id,omitempty" yaml:"subdevice-id,omitempty"`
	IoBase      *HexInt `json:"io-base,omitempty" yaml:"io-base,omitempty"`
}

// PciSlot formats a bus/device/function triple the way lspci does
func PciSlot(bus, device, function uint8) string {
	return fmt.Sprintf("%02x:%02x.%x", bus, device, function)
}
