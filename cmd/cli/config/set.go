package config

import (
	"fmt"
	"strings"

	"github.com/canonical/go-snapctl/env"
	"github.com/jpnorenam/fmio/cmd/cli/common"
	"github.com/jpnorenam/fmio/pkg/storage"
	"github.com/jpnorenam/fmio/pkg/utils"
	"github.com/spf13/cobra"
)

type setCommand struct {
	*common.Context

	// flags
	packageConfig bool
	unset         bool
}

func SetCommand(ctx *common.Context) *cobra.Command {
	var cmd setCommand
	cmd.Context = ctx

	cobraCmd := &cobra.Command{
		Use:   "set <key=value>",
		Short: "Set configurations",
		Long: "Set a configuration.\n" +
			"Known keys: " + strings.Join(knownKeys(), ", "),
		Example:           "  set driver=rtii2\n  set frequency=98.5\n  set --unset frequency",
		GroupID:           groupID,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cmd.validateArgs,
		RunE:              cmd.run,
	}

	// flags
	cobraCmd.Flags().BoolVar(&cmd.unset, "unset", false, "remove the user value of a key")
	cobraCmd.Flags().BoolVar(&cmd.packageConfig, "package", false, "set package configurations")
	err := cobraCmd.Flags().MarkHidden("package")
	if err != nil {
		panic(err)
	}

	return cobraCmd
}

func (cmd *setCommand) validateArgs(_ *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var keys []cobra.Completion
	for _, k := range knownKeys() {
		if cmd.unset {
			keys = append(keys, k)
		} else {
			keys = append(keys, k+"=")
		}
	}
	return keys, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func (cmd *setCommand) run(_ *cobra.Command, args []string) error {
	// snap configuration is only writable by root
	if env.Snap() != "" && !utils.IsRootUser() {
		return common.ErrPermissionDenied
	}
	if cmd.unset {
		return cmd.unsetValue(args[0])
	}
	return cmd.setValue(args[0])
}

func (cmd *setCommand) setValue(keyValue string) error {
	if keyValue[0] == '=' {
		return fmt.Errorf("key must not start with an equal sign")
	}

	// The value itself can contain an equal sign, so we split only on the first occurrence
	parts := strings.SplitN(keyValue, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("expected key=value, got %q", keyValue)
	}
	key, value := parts[0], parts[1]

	if err := validateValue(key, value); err != nil {
		return err
	}

	var err error
	if cmd.packageConfig {
		err = cmd.Config.Set(key, value, storage.PackageConfig)
	} else {
		err = cmd.Config.Set(key, value, storage.UserConfig)
	}
	if err != nil {
		return fmt.Errorf("error setting value %q for %q: %v", value, key, err)
	}

	return nil
}

func (cmd *setCommand) unsetValue(key string) error {
	var err error
	if cmd.packageConfig {
		err = cmd.Config.Unset(key, storage.PackageConfig)
	} else {
		err = cmd.Config.Unset(key, storage.UserConfig)
	}
	if err != nil {
		return fmt.Errorf("error unsetting %q: %v", key, err)
	}
	return nil
}

// validateValue rejects values that would only fail later, when used
func validateValue(key, value string) error {
	if value == "" {
		return nil
	}
	switch key {
	case storage.KeyFrequency:
		if _, err := common.ParseFrequency(value); err != nil {
			return fmt.Errorf("invalid %s: %v", key, err)
		}
	case storage.KeyScanCycles, storage.KeyLogMaxSize:
		n, err := utils.ToInt(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %v", key, err)
		}
		if n < 1 {
			return fmt.Errorf("invalid %s: must be at least 1", key)
		}
	}
	return nil
}
