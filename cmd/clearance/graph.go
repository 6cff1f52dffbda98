package main

import (
	"fmt"

	"github.com/aretw0/clearance/internal/cli"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the intake flow as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the intake conversation. With --session, the
states that session visited are highlighted and its current state is marked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		engine, err := cli.OpenEngine(engineOptions(cmd))
		if err != nil {
			return err
		}
		out, err := engine.Graph(cmd.Context(), sessionID)
		if err != nil {
			return fmt.Errorf("error rendering graph: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight the path of a saved session")
}
