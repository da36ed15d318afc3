package basic

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/jpnorenam/fmio/cmd/cli/common"
	"github.com/jpnorenam/fmio/pkg/session"
	"github.com/jpnorenam/fmio/pkg/types"
	"github.com/spf13/cobra"
)

type consoleCommand struct {
	*common.Context
}

func ConsoleCommand(ctx *common.Context) *cobra.Command {
	var cmd consoleCommand
	cmd.Context = ctx

	cobraCmd := &cobra.Command{
		Use:               "console",
		Short:             "Control the radio interactively",
		Long:              "Open the card and read tuning commands from the terminal until exit or CTRL-D",
		GroupID:           groupID,
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE:              cmd.run,
	}

	return cobraCmd
}

var consoleCommands = []string{"tune", "up", "down", "next", "prev", "volume", "mono", "stat", "info", "help", "exit"}

const consoleHelp = `tune <MHz>     tune to a frequency
up, down       search for the next station
next, prev     step 0.05 MHz
volume <n>     set the volume, 0 switches the tuner off
mono           receive in mono
stat           print the stereo and signal state
info           print tuner information
exit           leave the console
`

func (cmd *consoleCommand) run(_ *cobra.Command, _ []string) error {
	start, err := configuredFrequency(cmd.Context)
	if err != nil {
		return err
	}

	return common.WithSession(cmd.Context, func(s *session.Session) error {
		var completions []readline.PrefixCompleterInterface
		for _, c := range consoleCommands {
			completions = append(completions, readline.PcItem(c))
		}

		rl, err := readline.NewEx(&readline.Config{
			Prompt:          color.GreenString(s.Name() + "> "),
			AutoComplete:    readline.NewPrefixCompleter(completions...),
			InterruptPrompt: "^C",
		})
		if err != nil {
			return fmt.Errorf("error initializing readline: %w", err)
		}
		defer func() { rl.Close() }()
		log.SetOutput(rl.Stderr())

		fmt.Fprintf(rl.Stdout(), "Using %s. Type \"help\" for commands.\n", common.DescribeCard(s.Descriptor().Name, s.Address()))

		c := &console{session: s, out: rl.Stdout(), frequency: start}
		if start != 0 {
			err = c.tune(start)
			if err != nil {
				fmt.Fprintln(rl.Stderr(), color.RedString(err.Error()))
			}
		}

		for {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					break
				}
				continue
			} else if err == io.EOF {
				break
			}

			err = c.execute(line)
			if errors.Is(err, errConsoleExit) {
				break
			}
			if err != nil {
				fmt.Fprintln(rl.Stderr(), color.RedString(err.Error()))
			}
		}

		return nil
	})
}

var errConsoleExit = errors.New("exit")

// console runs one command line at a time against an open session
type console struct {
	session   *session.Session
	out       io.Writer
	frequency types.Frequency
	volume    *int
}

func (c *console) execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "tune", "t":
		if len(args) != 1 {
			return fmt.Errorf("usage: tune <MHz>")
		}
		f, err := common.ParseFrequency(args[0])
		if err != nil {
			return err
		}
		return c.tune(f)
	case "up", "down":
		return c.search(name)
	case "next", "prev":
		if c.frequency == 0 {
			return fmt.Errorf("tune to a frequency first")
		}
		f := c.frequency + 5
		if name == "prev" {
			f = c.frequency - 5
		}
		if !f.InBand() {
			return fmt.Errorf("%s is outside the FM band", f)
		}
		return c.tune(f)
	case "volume", "v":
		if len(args) != 1 {
			return fmt.Errorf("usage: volume <n>")
		}
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid volume %q", args[0])
		}
		err = c.session.SetVolume(v)
		if err != nil {
			return err
		}
		c.volume = &v
		return nil
	case "mono", "m":
		return c.session.SetMono()
	case "stat", "s":
		stereo, err := c.session.Stereo()
		if err != nil {
			return err
		}
		signal, err := c.session.Signal()
		if err != nil {
			return err
		}
		formatState(c.out, stereo, signal)
		return nil
	case "info", "i":
		info, err := c.session.Info()
		if err != nil {
			return err
		}
		if info.Frequency == nil && c.frequency != 0 {
			info.Frequency = &c.frequency
		}
		formatInfo(c.out, info)
		return nil
	case "help", "?":
		fmt.Fprint(c.out, consoleHelp)
		return nil
	case "exit", "quit", "q":
		return errConsoleExit
	default:
		return fmt.Errorf("unknown command %q, type \"help\" for commands", name)
	}
}

func (c *console) tune(f types.Frequency) error {
	err := c.session.Tune(f, c.volume)
	if err != nil {
		return err
	}
	c.frequency = f
	fmt.Fprintf(c.out, "%.2f MHz\n", f.MHz())
	return nil
}

func (c *console) search(direction string) error {
	if c.frequency == 0 {
		return fmt.Errorf("tune to a frequency first")
	}

	dir := types.Up
	if direction == "down" {
		dir = types.Down
	}

	found, err := c.session.Search(dir, c.frequency)
	if err != nil {
		return err
	}
	switch {
	case found == 0:
		fmt.Fprintln(c.out, "Search started")
	case found == c.frequency:
		fmt.Fprintln(c.out, "No station found")
	default:
		c.frequency = found
		fmt.Fprintf(c.out, "%.2f MHz\n", found.MHz())
	}
	return nil
}
