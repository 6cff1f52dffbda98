package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/clearance"
	"github.com/aretw0/clearance/internal/adapters/file"
	"github.com/aretw0/clearance/pkg/eligibility"
)

// rulesCandidates are looked up in the working directory when no rules
// file is given.
var rulesCandidates = []string{"rules.yaml", "rules.yml", "rules.json"}

// createEngine initializes an engine with the terminal conventions:
// sessions are files under <dir>/.clearance/sessions and a rules file in
// <dir> overrides the embedded rules.
func createEngine(opts RunOptions, logger *slog.Logger) (*clearance.Engine, error) {
	engineOpts := []clearance.Option{
		clearance.WithLogger(logger),
		clearance.WithStore(file.New(filepath.Join(opts.Dir, file.DefaultDir))),
	}
	if opts.Debug {
		engineOpts = append(engineOpts, clearance.WithLifecycleHooks(createDebugHooks(logger)))
	}

	rulesPath := opts.RulesPath
	if rulesPath == "" {
		rulesPath = findRules(opts.Dir)
	}
	if rulesPath != "" {
		rules, err := eligibility.LoadRules(rulesPath)
		if err != nil {
			return nil, fmt.Errorf("error loading rules: %w", err)
		}
		logger.Debug("rules loaded", "path", rulesPath)
		engineOpts = append(engineOpts, clearance.WithRules(rules))
	}

	engine, err := clearance.New(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// OpenEngine creates an engine with the same sessions and rules a run in
// opts.Dir would use, for commands that inspect rather than converse.
func OpenEngine(opts RunOptions) (*clearance.Engine, error) {
	opts = opts.withDefaults()
	return createEngine(opts, createLogger(opts.Debug))
}

// findRules returns the first rules file present in dir, or "".
func findRules(dir string) string {
	for _, name := range rulesCandidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
