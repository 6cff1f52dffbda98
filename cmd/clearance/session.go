package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/aretw0/clearance/internal/adapters/file"
	"github.com/aretw0/clearance/internal/config"
	"github.com/aretw0/clearance/pkg/adapters/redis"
	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/ports"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage saved intake sessions",
	Long: `List, inspect, and remove sessions stored in <dir>/.clearance/sessions, or in Redis
when --redis is set and REDIS_ADDR is configured.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all saved sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := sessionStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		ids, err := store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No saved sessions found.")
			return nil
		}
		fmt.Fprintln(out, "Saved Sessions:")
		for _, id := range ids {
			line := "- " + id
			if s, err := store.Load(cmd.Context(), id); err == nil {
				line += fmt.Sprintf("  [%s]", s.CurrentStateID)
				if s.Status != "" {
					line += " " + string(s.Status)
				}
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print a session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := sessionStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		s, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}
		return printSession(cmd, s)
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := sessionStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		failed := 0
		for _, id := range args {
			if err := store.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d session(s) could not be removed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionCmd.PersistentFlags().Bool("redis", false, "Use the Redis store configured by REDIS_ADDR instead of local files")
}

// sessionStore opens the file store under <dir>/.clearance/sessions, or the
// server's Redis store when --redis is set.
func sessionStore(cmd *cobra.Command) (ports.SessionStore, func(), error) {
	useRedis, _ := cmd.Flags().GetBool("redis")
	if !useRedis {
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = "."
		}
		return file.New(filepath.Join(dir, file.DefaultDir)), func() {}, nil
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Redis.Enabled() {
		return nil, nil, fmt.Errorf("--redis requires REDIS_ADDR")
	}
	rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	closeStore := func() { rs.Client().Close() }
	if err := rs.Ping(cmd.Context()); err != nil {
		closeStore()
		return nil, nil, err
	}
	store, err := sealSessions(rs, cfg.Encryption)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return store, closeStore, nil
}

func printSession(cmd *cobra.Command, s *domain.Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling session: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
