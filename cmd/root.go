package cmd

import (
	"os"

	"github.com/ecomops/devicegate/cmd/flags"
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "devicegate",
	Short: "Session-trust sidecar for the operations dashboard",
	Long: `devicegate owns the dashboard's device identity, lockout state and the
polling reconciliation against the remote device API, and exposes them to the
shell over a loopback HTTP surface.`,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&flags.DataDir, "data", "data", "data directory")
	RootCmd.PersistentFlags().StringVar(&flags.Config, "config", "", "config file (default <data>/config.json)")
	RootCmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "enable debug logging")
	RootCmd.PersistentFlags().BoolVar(&flags.LogStd, "log-std", false, "force logging to stdout as well")
}
