package main

import (
	"fmt"
	"os"

	"xapi-connector/src/config"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var configForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	// No config is loaded for these commands.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

var configInitCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Write a demo configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "xapi.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}

		cfg, err := config.Default()
		if err != nil {
			return err
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		pterm.Success.Printfln("wrote %s (the password is never saved; set XAPI_PASSWORD)", path)
		return nil
	},
}
