package main

import (
	"context"
	"errors"
	"time"

	"xapi-connector/src/config"
	"xapi-connector/src/logger"
	"xapi-connector/src/xapi"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// GlobalFlags are shared by every command.
type GlobalFlags struct {
	ConfigPath string
	Output     string
	Timeout    time.Duration
	Verbose    bool
}

var (
	globalFlags GlobalFlags
	conf        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "xapi",
	Short: "Command line client for the XTB xAPI",
	Long: `xapi runs single xAPI commands against a demo or real account.

Credentials come from XAPI_USER and XAPI_PASSWORD, or from the file given
with --config. Every command opens its own connection, logs in, runs and
logs out again.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "config file (default: built-in demo settings)")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.Output, "output", "o", "table", "output format: table|json")
	rootCmd.PersistentFlags().DurationVar(&globalFlags.Timeout, "timeout", 30*time.Second, "timeout of one command")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "log protocol traffic")

	rootCmd.AddCommand(symbolsCmd, symbolCmd, serverTimeCmd, versionCmd, ticksCmd, chartCmd,
		calendarCmd, tradingHoursCmd, commissionCmd, tradesCmd, marginCmd, streamTicksCmd, configCmd)
}

// -----------------------------------------------------------------------------

func loadConfig(cmd *cobra.Command, args []string) error {
	if globalFlags.Output != "table" && globalFlags.Output != "json" {
		return errors.New("--output must be table or json")
	}

	var err error
	if globalFlags.ConfigPath != "" {
		conf, err = config.NewConfig(globalFlags.ConfigPath)
	} else {
		conf, err = config.Default()
	}
	if err != nil {
		return err
	}

	conf.LogLevel = "WARNING"
	if globalFlags.Verbose {
		conf.LogLevel = "DEBUG"
	}
	conf.LogFile = ""
	return nil
}

func cliLogger(name string) *logger.Logger {
	return logger.NewLogger(conf.MConfig, name)
}

// -----------------------------------------------------------------------------

// commandContext bounds one request/response command by --timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), globalFlags.Timeout)
}

// withSession connects, logs in, runs fn and logs out. The connection is
// closed on every path, including a failed login.
func withSession(ctx context.Context, fn func(ctx context.Context, c *xapi.Client) error) error {
	if !conf.HasCredentials() {
		return errors.New("no credentials: set XAPI_USER and XAPI_PASSWORD or pass --config")
	}

	client, err := xapi.NewClientFromConfig(&conf.Xapi, xapi.WithLogger(cliLogger("xapi")))
	if err != nil {
		return err
	}

	return client.WithConnection(ctx, func(ctx context.Context, c *xapi.Client) error {
		if _, err := c.Login(ctx, conf.Xapi.User, conf.Xapi.Password, conf.Xapi.AppName); err != nil {
			return err
		}
		defer func() {
			if !c.IsLoggedIn() {
				return
			}
			// ctx may already be spent when fn ran until its deadline
			logoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if _, err := c.Logout(logoutCtx); err != nil {
				pterm.Warning.Printfln("logout failed: %v", err)
			}
		}()
		return fn(ctx, c)
	})
}
