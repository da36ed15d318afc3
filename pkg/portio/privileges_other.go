//go:build !linux

package portio

type Privileges struct{}

func NewPrivileges() *Privileges {
	return &Privileges{}
}

func (p *Privileges) Elevate() error { return ErrUnsupportedPlatform }
func (p *Privileges) Drop() error    { return nil }

func IsRoot() bool {
	return false
}
