package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/clearance/internal/cli"
	"github.com/aretw0/clearance/internal/presentation/tui"
	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/eligibility"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Classify a case from a file of answers",
	Long: `Reads collected answers as YAML (or JSON, which is valid YAML) and prints the
eligibility result without starting a conversation.

Example answers.yaml:

  jurisdiction: TX
  offense_level: misdemeanor
  case_outcome: dismissed
  arrest_date: 04/2020
  dismissed_category: standard`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		asJSON, _ := cmd.Flags().GetBool("json")

		var in io.Reader = cmd.InOrStdin()
		if path != "-" {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("error opening answers: %w", err)
			}
			defer f.Close()
			in = f
		}

		engine, err := cli.OpenEngine(engineOptions(cmd))
		if err != nil {
			return err
		}
		render := tui.NewRenderer()
		if asJSON {
			render = nil
		}
		return runEvaluate(engine, in, cmd.OutOrStdout(), render)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringP("file", "f", "-", "Answers file, or - for stdin")
	evaluateCmd.Flags().Bool("json", false, "Print the result as JSON")
}

type evaluator interface {
	Evaluate(data domain.CollectedData) *domain.EligibilityResult
}

// runEvaluate decodes answers from r and writes the result to w: rendered
// markdown when render is set, indented JSON otherwise.
func runEvaluate(engine evaluator, r io.Reader, w io.Writer, render func(string) (string, error)) error {
	var data domain.CollectedData
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("no answers given")
		}
		return fmt.Errorf("error decoding answers: %w", err)
	}
	if field, ok := eligibility.NormalizeDates(&data); !ok {
		return fmt.Errorf("invalid %s: use YYYY, MM/YYYY, or Month YYYY", field)
	}

	result := engine.Evaluate(data)
	if render == nil {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	out, err := render(eligibility.BuildContext(result))
	if err != nil {
		return fmt.Errorf("error rendering result: %w", err)
	}
	_, err = fmt.Fprint(w, out)
	return err
}
