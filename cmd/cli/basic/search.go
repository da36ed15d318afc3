package basic

import (
	"errors"
	"fmt"
	"os"

	"github.com/jpnorenam/fmio/cmd/cli/common"
	"github.com/jpnorenam/fmio/pkg/seek"
	"github.com/jpnorenam/fmio/pkg/session"
	"github.com/jpnorenam/fmio/pkg/types"
	"github.com/spf13/cobra"
)

type searchCommand struct {
	*common.Context

	// flags
	down bool
}

func SearchCommand(ctx *common.Context) *cobra.Command {
	var cmd searchCommand
	cmd.Context = ctx

	cobraCmd := &cobra.Command{
		Use:               "search [<MHz>]",
		Short:             "Search for a station",
		Long:              "Search for the next station, upwards from a frequency in MHz or from the configured frequency",
		GroupID:           groupID,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE:              cmd.run,
	}

	// flags
	cobraCmd.Flags().BoolVar(&cmd.down, "down", false, "search downwards")

	return cobraCmd
}

func (cmd *searchCommand) run(_ *cobra.Command, args []string) error {
	var from types.Frequency
	var err error

	if len(args) == 1 {
		from, err = common.ParseFrequency(args[0])
	} else {
		from, err = configuredFrequency(cmd.Context)
	}
	if err != nil {
		return err
	}
	if from == 0 {
		return fmt.Errorf("no start frequency given and no %q configured", "frequency")
	}

	dir := types.Up
	if cmd.down {
		dir = types.Down
	}

	return common.WithSession(cmd.Context, func(s *session.Session) error {
		stopProgress := common.StartProgressSpinner("Searching " + dir.String() + " from " + from.String())
		found, err := s.Search(dir, from)
		stopProgress()

		if errors.Is(err, seek.ErrSearchUnsupported) {
			return fmt.Errorf("%s does not support search", s.Descriptor().Name)
		}
		if err != nil {
			return fmt.Errorf("error searching: %v", err)
		}

		switch {
		case found == 0:
			fmt.Fprintln(os.Stderr, "Search started, the card cannot report where it stopped.")
		case found == from:
			fmt.Fprintln(os.Stderr, "No station found.")
		default:
			fmt.Printf("%.2f MHz\n", found.MHz())
		}
		return nil
	})
}
