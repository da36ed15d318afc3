package driver

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/jpnorenam/fmio/cmd/cli/common"
	"github.com/jpnorenam/fmio/pkg/detect"
	"github.com/jpnorenam/fmio/pkg/types"
	"github.com/jpnorenam/fmio/pkg/utils"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type detectCommand struct {
	*common.Context

	// flags
	format string
	use    bool
}

func DetectCommand(ctx *common.Context) *cobra.Command {
	var cmd detectCommand
	cmd.Context = ctx

	cobraCmd := &cobra.Command{
		Use:   "detect",
		Short: "Probe for supported cards",
		Long: "Probe every supported card at every port it may use and list the cards found.\n" +
			"Cards that cannot be probed directly are found by scanning the band for a\n" +
			"signal, which takes a while.",
		GroupID:           groupID,
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE:              cmd.run,
	}

	// flags
	cobraCmd.Flags().StringVar(&cmd.format, "format", utils.FormatText, "output format: text, yaml or json")
	cobraCmd.Flags().BoolVar(&cmd.use, "use", false, "offer to use the first card found as the default driver")

	return cobraCmd
}

func (cmd *detectCommand) run(_ *cobra.Command, _ []string) error {
	if !utils.ValidFormat(cmd.format) {
		return fmt.Errorf("unknown format %q", cmd.format)
	}

	detector := &detect.Detector{
		Registry: cmd.Registry,
		Slot:     cmd.Slot,
	}

	stop := func() {}
	if cmd.format == utils.FormatText {
		detector.Progress, stop = common.StartProgressCounter("Probing ports, please wait...", "ports checked")
	}
	found, err := detector.Detect()
	stop()
	if err != nil {
		return fmt.Errorf("error detecting cards: %v", err)
	}

	if cmd.format != utils.FormatText {
		if found == nil {
			found = []types.DetectedCard{}
		}
		return utils.PrintFormatted(os.Stdout, found, cmd.format)
	}

	return cmd.printFound(found)
}

func (cmd *detectCommand) printFound(found []types.DetectedCard) error {
	if len(found) == 0 {
		fmt.Fprintln(os.Stderr, "No cards found.")
		if !utils.IsRootUser() {
			fmt.Fprintln(os.Stderr, common.SuggestRoot())
		}
		return nil
	}

	highlight := color.New(color.FgGreen, color.Bold).SprintFunc()
	for _, card := range found {
		fmt.Printf("%s  %s\n", highlight(card.Driver), common.DescribeCard(card.Name, uint32(card.Port)))
	}

	if !cmd.use || !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	fmt.Println()
	if !common.ConfirmationPrompt(fmt.Sprintf("Use %q as the default driver?", found[0].Driver), true) {
		fmt.Println("No changes applied.")
		return nil
	}
	return (&useCommand{Context: cmd.Context}).useDriver(found[0].Driver)
}
