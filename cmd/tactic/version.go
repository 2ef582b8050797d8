package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/tactic"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tactic",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tactic version %s\n", strings.TrimSpace(tactic.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
