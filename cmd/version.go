package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildDate = "unknown"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("devicegate %s (built %s)\n", Version, BuildDate)
	},
}

func init() {
	RootCmd.AddCommand(VersionCmd)
}
