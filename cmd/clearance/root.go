package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/clearance/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "clearance",
	Short: "Clearance is a Texas record-clearing intake assistant",
	Long: `Clearance walks visitors through a short conversation about a Texas arrest or case,
classifies it against expunction and nondisclosure rules, and offers the next step.

Run it in the terminal, serve it over HTTP to the web widget, or expose it to AI agents over MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("dir", ".", "Project directory holding .clearance/sessions and an optional rules file")
	rootCmd.PersistentFlags().String("rules", "", "Rules file (YAML or JSON) overriding the embedded rules")
	rootCmd.PersistentFlags().Bool("debug", false, "Log engine lifecycle events to stderr")
}

// engineOptions reads the persistent flags shared by the offline commands.
func engineOptions(cmd *cobra.Command) cli.RunOptions {
	dir, _ := cmd.Flags().GetString("dir")
	rules, _ := cmd.Flags().GetString("rules")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.RunOptions{
		Dir:       dir,
		RulesPath: rules,
		Debug:     debug,
		In:        cmd.InOrStdin(),
		Out:       cmd.OutOrStdout(),
	}
}

func logLevel(cmd *cobra.Command) slog.Level {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
