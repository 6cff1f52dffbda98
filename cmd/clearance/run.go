package main

import (
	"strings"

	"github.com/aretw0/clearance"
	"github.com/aretw0/clearance/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the intake conversation in the terminal",
	Long: `Starts an intake conversation in the terminal. Progress is saved after every answer
under <dir>/.clearance/sessions, so running again with the same --session resumes it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := engineOptions(cmd)
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.Version = strings.TrimSpace(clearance.Version)
		return cli.RunSession(opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "", "Session ID to start or resume (default: a new random ID)")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().Bool("fresh", false, "Discard any saved progress for --session first")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
