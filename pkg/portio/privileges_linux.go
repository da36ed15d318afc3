package portio

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Privileges switches the effective user between root and the real user.
// The binary is expected to be setuid root, or run as root. The switch applies
// to every thread of the process.
type Privileges struct {
	uid int
}

func NewPrivileges() *Privileges {
	return &Privileges{uid: unix.Getuid()}
}

func (p *Privileges) Elevate() error {
	err := unix.Setresuid(-1, 0, -1)
	if err != nil {
		return fmt.Errorf("set effective root privs error: %w", err)
	}
	return nil
}

func (p *Privileges) Drop() error {
	err := unix.Setresuid(-1, p.uid, -1)
	if err != nil {
		return fmt.Errorf("set effective user %d privs error: %w", p.uid, err)
	}
	return nil
}

// IsRoot reports whether the real or effective user is root
func IsRoot() bool {
	return unix.Getuid() == 0 || unix.Geteuid() == 0
}
