package basic

import (
	"fmt"
	"os"

	"github.com/jpnorenam/fmio/cmd/cli/common"
	"github.com/jpnorenam/fmio/pkg/session"
	"github.com/jpnorenam/fmio/pkg/utils"
	"github.com/spf13/cobra"
)

type statusCommand struct {
	*common.Context

	// flags
	format string
	info   bool
}

func StatusCommand(ctx *common.Context) *cobra.Command {
	var cmd statusCommand
	cmd.Context = ctx

	cobraCmd := &cobra.Command{
		Use:               "status",
		Short:             "Show the reception state",
		Long:              "Show whether the tuner receives a signal, in stereo or mono, as far as the card can tell",
		GroupID:           groupID,
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE:              cmd.run,
	}

	// flags
	cobraCmd.Flags().StringVar(&cmd.format, "format", utils.FormatText, "output format: text, yaml or json")
	cobraCmd.Flags().BoolVarP(&cmd.info, "info", "i", false, "include driver, frequency and volume")

	return cobraCmd
}

func (cmd *statusCommand) run(_ *cobra.Command, _ []string) error {
	if !utils.ValidFormat(cmd.format) {
		return fmt.Errorf("unknown format %q", cmd.format)
	}

	return common.WithSession(cmd.Context, cmd.status)
}

func (cmd *statusCommand) status(s *session.Session) error {
	info, err := s.Info()
	if err != nil {
		return fmt.Errorf("error getting status: %v", err)
	}

	if cmd.format != utils.FormatText {
		if !cmd.info {
			info.Frequency = nil
			info.Volume = nil
		}
		return utils.PrintFormatted(os.Stdout, info, cmd.format)
	}

	if cmd.info {
		formatInfo(os.Stdout, info)
		return nil
	}

	if info.Stereo == nil && info.Signal == nil {
		fmt.Fprintf(os.Stderr, "%s cannot report its reception state.\n", info.Driver)
		return nil
	}
	formatState(os.Stdout, info.Stereo, info.Signal)
	return nil
}
