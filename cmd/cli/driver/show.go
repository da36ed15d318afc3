package driver

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jpnorenam/fmio/cmd/cli/common"
	"github.com/jpnorenam/fmio/pkg/drivers"
	"github.com/jpnorenam/fmio/pkg/utils"
	"github.com/spf13/cobra"
)

type showCommand struct {
	*common.Context

	// flags
	format string
}

func ShowCommand(ctx *common.Context) *cobra.Command {
	var cmd showCommand
	cmd.Context = ctx

	cobraCmd := &cobra.Command{
		Use:               "show-driver [<driver>]",
		Short:             "Print information about a driver",
		Long:              "Print the ports, capabilities and operations of the selected driver, or the specified driver",
		GroupID:           groupID,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: cmd.validateArgs,
		RunE:              cmd.run,
	}

	// flags
	cobraCmd.Flags().StringVar(&cmd.format, "format", utils.FormatYaml, "output format: text, yaml or json")

	return cobraCmd
}

func (cmd *showCommand) validateArgs(_ *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return selectionNames(cmd.Registry), cobra.ShellCompDirectiveNoFileComp
}

func (cmd *showCommand) run(_ *cobra.Command, args []string) error {
	var selection drivers.Selection
	var err error

	if len(args) == 1 {
		selection, err = cmd.Registry.Resolve(args[0])
		if err != nil {
			return fmt.Errorf("%v. %s", err, common.SuggestListDrivers())
		}
	} else {
		selection, err = common.SelectDriver(cmd.Context)
		if err != nil {
			return fmt.Errorf("%v. %s", err, common.SuggestDriverSelection())
		}
	}

	return cmd.printDriver(os.Stdout, selection.Descriptor)
}

func (cmd *showCommand) printDriver(w io.Writer, d *drivers.Descriptor) error {
	info := newDriverInfo(d)

	switch cmd.format {
	case utils.FormatText:
		fmt.Fprintf(w, "Name: %s\n", info.Name)
		fmt.Fprintf(w, "Driver: %s\n", info.Code)
		fmt.Fprintf(w, "Ports: %s\n", portsText(d))
		fmt.Fprintf(w, "Max volume: %d\n", d.Caps.MaxVolumeLevel())
		var ops []string
		for _, op := range info.Operations {
			ops = append(ops, string(op))
		}
		fmt.Fprintf(w, "Operations: %s\n", strings.Join(ops, ", "))
		return nil
	case utils.FormatYaml, utils.FormatJson:
		return utils.PrintFormatted(w, info, cmd.format)
	default:
		return fmt.Errorf("unknown format %q", cmd.format)
	}
}
