package common

import (
	"github.com/jpnorenam/fmio/pkg/cards"
	"github.com/jpnorenam/fmio/pkg/drivers"
	"github.com/jpnorenam/fmio/pkg/session"
	"github.com/jpnorenam/fmio/pkg/storage"
)

type Context struct {
	Verbose    bool
	Driver     string // --driver flag
	Config     storage.Config
	Hardware   cards.Hardware
	Privileges session.Privileges
	Registry   *drivers.Registry
	Slot       *session.Slot
}
