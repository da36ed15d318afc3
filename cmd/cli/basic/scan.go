package basic

import (
	"errors"
	"fmt"
	"os"

	"github.com/jpnorenam/fmio/cmd/cli/common"
	"github.com/jpnorenam/fmio/pkg/seek"
	"github.com/jpnorenam/fmio/pkg/session"
	"github.com/jpnorenam/fmio/pkg/types"
	"github.com/jpnorenam/fmio/pkg/utils"
	"github.com/spf13/cobra"
)

type scanCommand struct {
	*common.Context

	// flags
	from   common.FrequencyValue
	to     common.FrequencyValue
	cycles int
	format string
}

func ScanCommand(ctx *common.Context) *cobra.Command {
	var cmd scanCommand
	cmd.Context = ctx

	cobraCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the band",
		Long: "Tune to every frequency in a range in 10 kHz steps and print the signal\n" +
			"received at each. Without --to the scan runs to the top of the band.",
		GroupID:           groupID,
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE:              cmd.run,
	}

	// flags
	cobraCmd.Flags().Var(&cmd.from, "from", "start frequency (default 87.50)")
	cobraCmd.Flags().Var(&cmd.to, "to", "end frequency, excluded (default 108.00)")
	cobraCmd.Flags().IntVarP(&cmd.cycles, "cycles", "c", 0, "signal samples per frequency (default from scan.cycles)")
	cobraCmd.Flags().StringVar(&cmd.format, "format", utils.FormatText, "output format: text, yaml or json")

	return cobraCmd
}

type scanResult struct {
	Frequency float64 `json:"frequency" yaml:"frequency"`
	Signal    int     `json:"signal" yaml:"signal"`
}

func (cmd *scanCommand) run(cobraCmd *cobra.Command, _ []string) error {
	if !utils.ValidFormat(cmd.format) {
		return fmt.Errorf("unknown format %q", cmd.format)
	}

	cycles := cmd.cycles
	if !cobraCmd.Flags().Changed("cycles") {
		var err error
		cycles, err = configuredCycles(cmd.Context)
		if err != nil {
			return err
		}
	}

	return common.WithSession(cmd.Context, func(s *session.Session) error {
		var results []scanResult
		emit := func(step seek.Step) {
			if cmd.format == utils.FormatText {
				fmt.Println(step)
				return
			}
			results = append(results, scanResult{Frequency: step.Frequency.MHz(), Signal: step.Signal})
		}

		to := cmd.to.Frequency
		if to == 0 {
			to = types.MaxFrequency
		}

		err := s.Scan(cmd.from.Frequency, to, cycles, emit)
		if errors.Is(err, seek.ErrScanUnsupported) {
			return fmt.Errorf("%s: %v", s.Descriptor().Name, err)
		}
		if err != nil {
			return fmt.Errorf("error scanning: %v", err)
		}

		if cmd.format != utils.FormatText {
			return utils.PrintFormatted(os.Stdout, results, cmd.format)
		}
		return nil
	})
}
