package others

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/jpnorenam/fmio/cmd/cli/common"
	"github.com/jpnorenam/fmio/pkg/cards"
	"github.com/jpnorenam/fmio/pkg/pci"
	"github.com/jpnorenam/fmio/pkg/types"
	"github.com/jpnorenam/fmio/pkg/utils"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type showBusCommand struct {
	*common.Context

	// flags
	format string
	direct bool
}

func ShowBusCommand(ctx *common.Context) *cobra.Command {
	var cmd showBusCommand
	cmd.Context = ctx

	cobraCmd := &cobra.Command{
		Use:   "show-bus",
		Short: "Print the PCI functions of the host",
		Long: "Print the PCI functions on the buses probed for PCI cards.\n" +
			"With --direct the configuration space is read through the I/O ports\n" +
			"instead of the kernel, which needs root.",
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE:              cmd.run,
	}

	// flags
	cobraCmd.Flags().StringVar(&cmd.format, "format", utils.FormatText, "output format: text, yaml or json")
	cobraCmd.Flags().BoolVar(&cmd.direct, "direct", false, "read configuration space through the I/O ports")

	return cobraCmd
}

func (cmd *showBusCommand) run(_ *cobra.Command, _ []string) error {
	if !utils.ValidFormat(cmd.format) {
		return fmt.Errorf("unknown format %q", cmd.format)
	}

	var devices []types.PciDevice
	var err error
	if cmd.direct {
		devices, err = cmd.enumerateDirect()
	} else {
		devices, err = pci.Enumerate(cmd.Hardware.Config, pci.DefaultBounds)
	}
	if err != nil {
		return fmt.Errorf("failed to read PCI buses: %s", err)
	}

	if cmd.format == utils.FormatText {
		return printBusTable(os.Stdout, devices)
	}
	if devices == nil {
		devices = []types.PciDevice{}
	}
	return utils.PrintFormatted(os.Stdout, devices, cmd.format)
}

// enumerateDirect walks configuration mechanism #1 with root privileges and
// access to all ports
func (cmd *showBusCommand) enumerateDirect() (devices []types.PciDevice, err error) {
	if !utils.IsRootUser() {
		return nil, fmt.Errorf("%w. %s", common.ErrPermissionDenied, common.SuggestRoot())
	}

	if err := cmd.Privileges.Elevate(); err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, cmd.Privileges.Drop())
	}()

	if err := cmd.Hardware.Perm.AcquireAll(); err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, cmd.Hardware.Perm.ReleaseAll())
	}()

	return pci.Enumerate(pci.NewMechanism1(cmd.Hardware.IO), pci.DefaultBounds)
}

// cardName returns the supported cards a function may be, if any
func cardName(device types.PciDevice) string {
	var names []string
	for name, m := range cards.PCIMatches() {
		if uint16(device.VendorId) == m.VendorID && uint16(device.DeviceId) == m.DeviceID {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return strings.Join(names, " / ")
}

func printBusTable(w io.Writer, devices []types.PciDevice) error {
	if len(devices) == 0 {
		fmt.Fprintln(os.Stderr, "No PCI functions found.")
		return nil
	}

	var rows [][]string
	for _, d := range devices {
		ioBase := "-"
		if d.IoBase != nil {
			ioBase = d.IoBase.String()
		}
		rows = append(rows, []string{
			d.Slot,
			fmt.Sprintf("%04x:%04x", uint32(d.VendorId), uint32(d.DeviceId)),
			fmt.Sprintf("%06x", uint32(d.DeviceClass)),
			ioBase,
			cardName(d),
		})
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"slot", "id", "class", "io", "card"})
	err := table.Bulk(rows)
	if err != nil {
		return fmt.Errorf("error adding data to table: %v", err)
	}
	err = table.Render()
	if err != nil {
		return fmt.Errorf("error rendering table: %v", err)
	}
	return nil
}
