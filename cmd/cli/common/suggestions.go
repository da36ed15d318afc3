package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/canonical/go-snapctl/env"
)

func programName() string {
	if name := env.SnapInstanceName(); name != "" {
		return name
	}
	return filepath.Base(os.Args[0])
}

func SuggestDriverSelection() string {
	return fmt.Sprintf("Run \"%s detect\" to find your card, then \"%s use-driver <driver>\" to select it.", programName(), programName())
}

func SuggestRoot() string {
	return fmt.Sprintf("The card needs root privileges, run \"sudo %s\" or install it setuid root.", programName())
}

func SuggestListDrivers() string {
	return fmt.Sprintf("Run \"%s list-drivers\" to see the supported cards.", programName())
}

// DescribeCard names a card and, if it has one, its port
func DescribeCard(name string, port uint32) string {
	if port == 0 {
		return name
	}
	return fmt.Sprintf("%s, port 0x%x", name, port)
}
