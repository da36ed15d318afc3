// Package portio gives access to the x86 I/O port space and to the privileges
// needed to use it.
package portio

import "errors"

var (
	ErrUnsupportedPlatform = errors.New("port I/O is not supported on this platform")
	ErrWideAccess          = errors.New("port space only transfers single bytes")
)

// Space reads and writes I/O ports
type Space interface {
	Inb(port uint16) (uint8, error)
	Inw(port uint16) (uint16, error)
	Inl(port uint16) (uint32, error)
	Outb(port uint16, value uint8) error
	Outw(port uint16, value uint16) error
	Outl(port uint16, value uint32) error
}

// Port is a Space holding a resource until closed
type Port interface {
	Space
	Close() error
}

// Permissions grants the process access to port ranges, or to all ports
type Permissions interface {
	Acquire(port uint16, n int) error
	Release(port uint16, n int) error
	AcquireAll() error
	ReleaseAll() error
}

// NoPrivileges leaves the effective user unchanged
type NoPrivileges struct{}

func (NoPrivileges) Elevate() error { return nil }
func (NoPrivileges) Drop() error    { return nil }
