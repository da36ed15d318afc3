package common

import (
	"errors"
	"fmt"
	"os"

	"github.com/jpnorenam/fmio/pkg/diag"
	"github.com/jpnorenam/fmio/pkg/drivers"
	"github.com/jpnorenam/fmio/pkg/storage"
)

// DriverEnv selects the driver when no --driver flag is given
const DriverEnv = "FMTUNER"

type driverSource struct {
	origin string
	name   string
}

// SelectDriver resolves the driver from the --driver flag, the FMTUNER
// environment variable and the driver setting, in that order. An invalid
// name is reported and the next source is tried.
func SelectDriver(ctx *Context) (drivers.Selection, error) {
	configured, err := configuredDriver(ctx)
	if err != nil {
		return drivers.Selection{}, err
	}

	sources := []driverSource{
		{"--driver flag", ctx.Driver},
		{DriverEnv, os.Getenv(DriverEnv)},
		{storage.KeyDriver + " setting", configured},
	}

	var rejected []string
	for _, source := range sources {
		if source.name == "" {
			continue
		}

		selection, err := ctx.Registry.Resolve(source.name)
		if errors.Is(err, drivers.ErrInvalidDriver) {
			diag.Warnf("Invalid driver %q from %s, ignoring", source.name, source.origin)
			rejected = append(rejected, source.name)
			continue
		}
		if err != nil {
			return drivers.Selection{}, err
		}

		if len(rejected) > 0 {
			diag.Warnf("Using driver %q", selection.Name())
		}
		diag.Debugf("Driver %s (%s) selected by %s", selection.Name(), selection.Descriptor.Name, source.origin)
		return selection, nil
	}

	if len(rejected) > 0 {
		return drivers.Selection{}, fmt.Errorf("%w: %q", drivers.ErrInvalidDriver, rejected[0])
	}
	return drivers.Selection{}, ErrNoDriver
}

func configuredDriver(ctx *Context) (string, error) {
	if ctx.Config == nil {
		return "", nil
	}
	values, err := ctx.Config.Get(storage.KeyDriver)
	if err != nil {
		return "", fmt.Errorf("error reading driver setting: %v", err)
	}
	if v, found := values[storage.KeyDriver]; found && v != nil {
		return fmt.Sprint(v), nil
	}
	return "", nil
}
