package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MrEthical07/tokenauth/internal/config"
)

const (
	LogLevelKey   = "log.level"
	LogFormatKey  = "log.format"
	LogNoColorKey = "log.no_color"
)

// cli carries state shared by all subcommands of one root command.
type cli struct {
	v          *viper.Viper
	configFile string
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:   "tokenauth",
		Short: "Credential verification and HS256 bearer token service",
		Long: `tokenauth exchanges an identifier and secret for a signed bearer token
and verifies such tokens on protected routes.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initLogging(c.v, cmd.ErrOrStderr())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.configFile, "config", "c", "", "config file (default is ./tokenauth.yaml)")

	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = c.v.BindPFlag(LogLevelKey, flags.Lookup("log-level"))

	flags.String("log-format", "console", "Log format (console, json)")
	_ = c.v.BindPFlag(LogFormatKey, flags.Lookup("log-format"))

	flags.Bool("no-color", false, "Disable color output")
	_ = c.v.BindPFlag(LogNoColorKey, flags.Lookup("no-color"))

	rootCmd.AddCommand(
		c.newServeCmd(),
		c.newTokenCmd(),
		c.newHashCmd(),
		c.newCheckCmd(),
	)
	return rootCmd
}

func (c *cli) load() (*config.Config, error) {
	return config.Load(c.v, c.configFile)
}
