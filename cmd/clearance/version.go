package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/clearance"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of clearance",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "clearance version %s\n", strings.TrimSpace(clearance.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
