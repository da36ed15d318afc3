package portio

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

func inb(port uint16) uint8
func inw(port uint16) uint16
func inl(port uint16) uint32
func outb(port uint16, value uint8)
func outw(port uint16, value uint16)
func outl(port uint16, value uint32)

// Direct accesses ports with the in and out instructions, so 16 and 32 bit
// transfers reach the hardware whole. The I/O privilege level is per thread:
// every access pins its goroutine to a thread and raises the level for the
// duration of the instruction, which needs root.
type Direct struct{}

func (Direct) access(fn func()) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	err := unix.Iopl(3)
	if err != nil {
		return fmt.Errorf("error raising I/O privilege level: %w", err)
	}
	fn()
	return unix.Iopl(0)
}

func (d Direct) Inb(port uint16) (v uint8, err error) {
	err = d.access(func() { v = inb(port) })
	return v, err
}

func (d Direct) Inw(port uint16) (v uint16, err error) {
	err = d.access(func() { v = inw(port) })
	return v, err
}

func (d Direct) Inl(port uint16) (v uint32, err error) {
	err = d.access(func() { v = inl(port) })
	return v, err
}

func (d Direct) Outb(port uint16, value uint8) error {
	return d.access(func() { outb(port, value) })
}

func (d Direct) Outw(port uint16, value uint16) error {
	return d.access(func() { outw(port, value) })
}

func (d Direct) Outl(port uint16, value uint32) error {
	return d.access(func() { outl(port, value) })
}

func (Direct) Close() error { return nil }

// NewSpace returns the port space of the host
func NewSpace() Port {
	return Direct{}
}
