package config

import (
	"fmt"
	"io"
	"os"

	"github.com/jpnorenam/fmio/cmd/cli/common"
	"github.com/jpnorenam/fmio/pkg/utils"
	"github.com/spf13/cobra"
)

type getCommand struct {
	*common.Context

	// flags
	format string
}

func GetCommand(ctx *common.Context) *cobra.Command {
	var cmd getCommand
	cmd.Context = ctx

	cobraCmd := &cobra.Command{
		Use:   "get [<key>]",
		Short: "Print configurations",
		Long: "Print one or more configurations.\n" +
			"A single value is printed as is, several values as a document.",
		GroupID:           groupID,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: cmd.validateArgs,
		RunE:              cmd.run,
	}

	// flags
	cobraCmd.Flags().StringVar(&cmd.format, "format", utils.FormatYaml, "document format: yaml or json")

	return cobraCmd
}

func (cmd *getCommand) validateArgs(_ *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return knownKeys(), cobra.ShellCompDirectiveNoFileComp
}

func (cmd *getCommand) run(_ *cobra.Command, args []string) error {
	if cmd.format != utils.FormatYaml && cmd.format != utils.FormatJson {
		return fmt.Errorf("unknown format %q", cmd.format)
	}

	var key string
	if len(args) == 1 {
		key = args[0]
	}
	return cmd.print(os.Stdout, key)
}

// print writes the value of key, or every value when key is empty
func (cmd *getCommand) print(w io.Writer, key string) error {
	if key == "" {
		values, err := cmd.Config.GetAll()
		if err != nil {
			return fmt.Errorf("error getting values: %v", err)
		}
		return utils.PrintFormatted(w, values, cmd.format)
	}

	values, err := cmd.Config.Get(key)
	if err != nil {
		return fmt.Errorf("error getting value of %q: %v", key, err)
	}
	if len(values) == 0 {
		return fmt.Errorf("no value set for key %q", key)
	}

	if v, found := values[key]; found && len(values) == 1 {
		_, err = fmt.Fprintln(w, v)
		return err
	}
	return utils.PrintFormatted(w, values, cmd.format)
}
