package driver

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/jpnorenam/fmio/cmd/cli/common"
	"github.com/jpnorenam/fmio/pkg/storage"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type useCommand struct {
	*common.Context
}

func UseCommand(ctx *common.Context) *cobra.Command {
	var cmd useCommand
	cmd.Context = ctx

	cobraCmd := &cobra.Command{
		Use:     "use-driver [<driver>]",
		Short:   "Select the default driver",
		Long:    "Save the driver used when neither --driver nor FMTUNER is given.\nWithout an argument the driver is picked from a list.",
		Example: "  use-driver rtii2",
		GroupID: groupID,
		// Args
		// use-driver <driver> saves the given driver
		// use-driver without arguments prompts on a terminal
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: cmd.validateArgs,
		RunE:              cmd.run,
	}

	return cobraCmd
}

func (cmd *useCommand) validateArgs(_ *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return selectionNames(cmd.Registry), cobra.ShellCompDirectiveNoFileComp
}

func (cmd *useCommand) run(_ *cobra.Command, args []string) error {
	var name string
	if len(args) == 1 {
		name = args[0]
	} else {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("driver name not specified")
		}
		var err error
		name, err = cmd.pickDriver()
		if err != nil {
			return err
		}
		if name == "" {
			fmt.Println("No changes applied.")
			return nil
		}
	}

	return cmd.useDriver(name)
}

// pickDriver lets the user choose a driver. It returns an empty name when the
// user cancels.
func (cmd *useCommand) pickDriver() (string, error) {
	var options []huh.Option[string]
	for _, d := range cmd.Registry.Descriptors() {
		for v := range d.Variants() {
			label := d.Name
			if port := d.Port(v); port != 0 {
				label += fmt.Sprintf(" (port 0x%x)", port)
			}
			options = append(options, huh.NewOption(label, d.SelectionName(v)))
		}
	}

	var selected string
	if current, err := common.SelectDriver(cmd.Context); err == nil {
		selected = current.Name()
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select your card").
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		// Cancelled with CTRL-C or Esc
		return "", nil
	}

	return selected, nil
}

// useDriver validates name and saves it as the driver setting
func (cmd *useCommand) useDriver(name string) error {
	selection, err := cmd.Registry.Resolve(name)
	if err != nil {
		return fmt.Errorf("%v. %s", err, common.SuggestListDrivers())
	}

	err = cmd.Config.Set(storage.KeyDriver, selection.Name(), storage.UserConfig)
	if err != nil {
		return fmt.Errorf("error saving driver: %v", err)
	}

	fmt.Printf("Driver changed to %q (%s).\n", selection.Name(), common.DescribeCard(selection.Descriptor.Name, selection.Port()))
	return nil
}
