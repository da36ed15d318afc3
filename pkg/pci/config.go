// Package pci reads PCI configuration space and locates cards on the bus
package pci

import (
	"fmt"

	"github.com/jpnorenam/fmio/pkg/types"
)

// Configuration registers
const (
	RegID        = 0x00
	RegCommand   = 0x04
	RegClass     = 0x08
	RegBAR0      = 0x10
	RegSubsystem = 0x2c
)

// Address is the (bus, device, function) coordinate of one PCI function
type Address struct {
	Bus      uint8
	Device   uint8
	Function uint8
}

func (a Address) String() string {
	return types.PciSlot(a.Bus, a.Device, a.Function)
}

// ConfigSpace reads 32-bit configuration registers. Absent functions read as all ones.
type ConfigSpace interface {
	ReadConfig(addr Address, reg uint8) (uint32, error)
}

// Register field accessors
func vendorOf(id uint32) uint16   { return uint16(id) }
func productOf(id uint32) uint16  { return uint16(id >> 16) }
func classOf(cr uint32) uint8     { return uint8(cr >> 24) }
func subclassOf(cr uint32) uint8  { return uint8(cr >> 16) }
func interfaceOf(cr uint32) uint8 { return uint8(cr >> 8) }
func revisionOf(cr uint32) uint8  { return uint8(cr) }

const (
	barIOSpace = 1 << 0
	barIOMask  = ^uint32(0x03)
)

// ioBase returns the port base of an I/O-mapped BAR
func ioBase(bar uint32) (uint16, bool) {
	if bar&barIOSpace == 0 {
		return 0, false
	}
	return uint16(bar & barIOMask), true
}

func readConfig(cs ConfigSpace, addr Address, reg uint8) (uint32, error) {
	v, err := cs.ReadConfig(addr, reg)
	if err != nil {
		return 0, fmt.Errorf("error reading register 0x%02x of %s: %w", reg, addr, err)
	}
	return v, nil
}
