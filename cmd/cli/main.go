package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/canonical/go-snapctl/env"
	"github.com/jpnorenam/fmio/cmd/cli/basic"
	"github.com/jpnorenam/fmio/cmd/cli/common"
	"github.com/jpnorenam/fmio/cmd/cli/config"
	"github.com/jpnorenam/fmio/cmd/cli/driver"
	"github.com/jpnorenam/fmio/cmd/cli/others"
	"github.com/jpnorenam/fmio/pkg/cards"
	"github.com/jpnorenam/fmio/pkg/diag"
	"github.com/jpnorenam/fmio/pkg/pci"
	"github.com/jpnorenam/fmio/pkg/portio"
	"github.com/jpnorenam/fmio/pkg/session"
	"github.com/jpnorenam/fmio/pkg/storage"
	"github.com/jpnorenam/fmio/pkg/utils"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run())
}

func run() int {
	// disable logging timestamps
	log.SetFlags(0)

	// Get snap name for dynamic commands
	instanceName := env.SnapInstanceName()
	if instanceName == "" {
		instanceName = filepath.Base(os.Args[0])
	}
	diag.SetPrefix(instanceName)

	// A setuid binary runs as the real user, except around hardware access
	privileges := portio.NewPrivileges()
	if err := privileges.Drop(); err != nil {
		log.Printf("Error: %v", err)
		return 1
	}

	ports := portio.NewSpace()
	defer ports.Close()

	hw := cards.Hardware{
		IO:     ports,
		Perm:   portio.SystemPermissions{},
		Config: pci.NewSysfs(),
	}
	registry, err := cards.Registry(hw)
	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}

	cfg, err := storage.NewConfig()
	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}

	ctx := &common.Context{
		Config:     cfg,
		Hardware:   hw,
		Privileges: privileges,
		Registry:   registry,
		Slot:       session.NewSlot(privileges),
	}

	// rootCmd is the base command
	// It gets populated with subcommands
	rootCmd := &cobra.Command{
		SilenceUsage: true,
		Long: instanceName + " controls FM radio tuner cards on the ISA and PCI buses.\n\n" +
			"Use this command to tune, search and scan the band, or to find and select\n" +
			"the driver of your card.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(ctx)
		},
		Use: instanceName,
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&ctx.Verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&ctx.Driver, "driver", "d", "", "Driver to use, overriding "+common.DriverEnv+" and the driver setting")

	// Disable command sorting to keep commands sorted as added below
	cobra.EnableCommandSorting = false

	rootCmd.AddGroup(basic.Group("Basic Commands:"))
	rootCmd.AddCommand(
		basic.TuneCommand(ctx),
		basic.StatusCommand(ctx),
		basic.SearchCommand(ctx),
		basic.ScanCommand(ctx),
		basic.ConsoleCommand(ctx),
	)

	rootCmd.AddGroup(config.Group("Configuration Commands:"))
	rootCmd.AddCommand(
		config.GetCommand(ctx),
		config.SetCommand(ctx),
	)

	rootCmd.AddGroup(driver.Group("Driver Commands:"))
	rootCmd.AddCommand(
		driver.ListCommand(ctx),
		driver.ShowCommand(ctx),
		driver.UseCommand(ctx),
		driver.DetectCommand(ctx),
	)

	// other commands (help is added by default)
	rootCmd.AddCommand(
		others.ShowBusCommand(ctx),
	)

	// Hide the 'completion' command from help text
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	err = rootCmd.Execute()
	if closeErr := diag.Close(); closeErr != nil {
		log.Printf("Error closing log file: %v", closeErr)
	}
	if err != nil {
		return 1
	}
	return 0
}

// setupLogging applies the verbose flag and the log settings
func setupLogging(ctx *common.Context) error {
	diag.SetVerbose(ctx.Verbose)
	if ctx.Verbose {
		diag.Debugf("Verbose output enabled globally.")
	}

	path, err := config.GetString(ctx.Config, storage.KeyLogFile)
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}

	size, err := config.GetValue(ctx.Config, storage.KeyLogMaxSize)
	if err != nil {
		return err
	}
	maxSize, err := utils.ToInt(size)
	if err != nil {
		return fmt.Errorf("invalid %s setting: %v", storage.KeyLogMaxSize, err)
	}

	err = diag.LogToFile(path, maxSize)
	if err != nil {
		diag.Warn(err, "Logging to %s disabled", path)
	}
	return nil
}
