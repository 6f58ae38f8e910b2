package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hoistd/hoist/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "prints hoist version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Version())
	},
}
