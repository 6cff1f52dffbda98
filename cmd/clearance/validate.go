package main

import (
	"fmt"

	"github.com/aretw0/clearance/internal/intake"
	"github.com/aretw0/clearance/pkg/eligibility"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [rules-file]",
	Short: "Check a rules file and the flow built from it",
	Long: `Loads a rules file (or the embedded rules), checks its constants and catalog, and
verifies that every state of the intake flow is reachable and only routes to known states.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("rules")
		if len(args) > 0 {
			path = args[0]
		}
		if err := runValidate(path); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Rules and flow are valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	rules := eligibility.DefaultRules()
	if path != "" {
		loaded, err := eligibility.LoadRules(path)
		if err != nil {
			return err
		}
		rules = loaded
	}
	return intake.Texas(rules).Validate()
}
