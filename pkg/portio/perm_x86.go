//go:build linux && (amd64 || 386)

package portio

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// SystemPermissions uses ioperm and iopl
type SystemPermissions struct{}

func (SystemPermissions) Acquire(port uint16, n int) error {
	err := unix.Ioperm(int(port), n, 1)
	if err != nil {
		return fmt.Errorf("error acquiring ports 0x%x-0x%x: %w", port, int(port)+n-1, err)
	}
	return nil
}

func (SystemPermissions) Release(port uint16, n int) error {
	err := unix.Ioperm(int(port), n, 0)
	if err != nil {
		return fmt.Errorf("error releasing ports 0x%x-0x%x: %w", port, int(port)+n-1, err)
	}
	return nil
}

func (SystemPermissions) AcquireAll() error {
	err := unix.Iopl(3)
	if err != nil {
		return fmt.Errorf("error raising I/O privilege level: %w", err)
	}
	return nil
}

func (SystemPermissions) ReleaseAll() error {
	err := unix.Iopl(0)
	if err != nil {
		return fmt.Errorf("error lowering I/O privilege level: %w", err)
	}
	return nil
}
