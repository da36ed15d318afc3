package basic

import (
	"fmt"
	"os"

	"github.com/jpnorenam/fmio/cmd/cli/common"
	"github.com/jpnorenam/fmio/pkg/session"
	"github.com/jpnorenam/fmio/pkg/types"
	"github.com/spf13/cobra"
)

type tuneCommand struct {
	*common.Context

	// flags
	volume int
	mono   bool
	stat   bool
	info   bool
}

func TuneCommand(ctx *common.Context) *cobra.Command {
	var cmd tuneCommand
	cmd.Context = ctx

	cobraCmd := &cobra.Command{
		Use:   "tune [<MHz>]",
		Short: "Tune the radio",
		Long: "Tune the radio to a frequency in MHz, or to the configured frequency.\n" +
			"Tuning applies the volume policy of the card: most cards are switched on at\n" +
			"volume 1, some at their maximum volume, unless --volume is given.",
		Example:           "  tune 98.5\n  tune 101.7 --volume 4 --mono\n  tune --volume 0",
		GroupID:           groupID,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE:              cmd.run,
	}

	// flags
	cobraCmd.Flags().IntVarP(&cmd.volume, "volume", "V", 0, "set the volume, 0 switches the tuner off")
	cobraCmd.Flags().BoolVarP(&cmd.mono, "mono", "m", false, "receive in mono")
	cobraCmd.Flags().BoolVarP(&cmd.stat, "stat", "s", false, "print the stereo and signal state afterwards")
	cobraCmd.Flags().BoolVarP(&cmd.info, "info", "i", false, "print tuner information afterwards")

	return cobraCmd
}

func (cmd *tuneCommand) run(cobraCmd *cobra.Command, args []string) error {
	var frequency types.Frequency
	var err error

	if len(args) == 1 {
		frequency, err = common.ParseFrequency(args[0])
		if err != nil {
			return err
		}
	}

	var volume *int
	if cobraCmd.Flags().Changed("volume") {
		if cmd.volume < 0 {
			return fmt.Errorf("invalid volume %d", cmd.volume)
		}
		volume = &cmd.volume
	}

	if frequency == 0 && volume == nil && !cmd.mono {
		frequency, err = configuredFrequency(cmd.Context)
		if err != nil {
			return err
		}
		if frequency == 0 {
			return fmt.Errorf("no frequency given and no %q configured", "frequency")
		}
	}

	return common.WithSession(cmd.Context, func(s *session.Session) error {
		return cmd.tune(s, frequency, volume)
	})
}

func (cmd *tuneCommand) tune(s *session.Session, frequency types.Frequency, volume *int) error {
	if cmd.mono {
		err := s.SetMono()
		if err != nil {
			return fmt.Errorf("error switching to mono: %v", err)
		}
	}

	if frequency != 0 {
		err := s.Tune(frequency, volume)
		if err != nil {
			return err
		}
	} else if volume != nil {
		err := s.SetVolume(*volume)
		if err != nil {
			return fmt.Errorf("error setting volume: %v", err)
		}
	}

	if cmd.stat {
		stereo, err := s.Stereo()
		if err != nil {
			return fmt.Errorf("error reading stereo state: %v", err)
		}
		signal, err := s.Signal()
		if err != nil {
			return fmt.Errorf("error reading signal state: %v", err)
		}
		formatState(os.Stdout, stereo, signal)
	}

	if cmd.info {
		info, err := s.Info()
		if err != nil {
			return err
		}
		formatInfo(os.Stdout, info)
	}

	return nil
}
