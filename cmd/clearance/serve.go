package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/clearance"
	"github.com/aretw0/clearance/internal/config"
	"github.com/aretw0/clearance/internal/logging"
	httpAdapter "github.com/aretw0/clearance/pkg/adapters/http"
	"github.com/aretw0/clearance/pkg/adapters/memory"
	"github.com/aretw0/clearance/pkg/adapters/redis"
	"github.com/aretw0/clearance/pkg/adapters/sqlite"
	"github.com/aretw0/clearance/pkg/eligibility"
	"github.com/aretw0/clearance/pkg/observability"
	"github.com/aretw0/clearance/pkg/persistence/middleware"
	"github.com/aretw0/clearance/pkg/ports"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	lockPrefix      = "clearance:lock:"
	janitorInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for the web widget",
	Long: `Starts the intake engine behind a JSON API over HTTP.

Configuration comes from the environment (and a .env file when present):
PORT, ALLOWED_ORIGINS, SESSION_TTL, REDIS_ADDR, REDIS_PASSWORD, REDIS_DB,
DB_PATH, RULES_PATH, RATE_LIMIT, RATE_WINDOW, LOG_LEVEL, CLEARANCE_MAX_INPUT_SIZE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error loading .env: %w", err)
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetString("port")
		}
		if rules, _ := cmd.Flags().GetString("rules"); rules != "" {
			cfg.RulesPath = rules
		}
		return serve(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "3001", "Port to listen on (overrides PORT)")
}

func serve(cfg *config.Config) error {
	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()
	opts := []clearance.Option{
		clearance.WithLogger(logger),
		clearance.WithLifecycleHooks(observability.Compose(observability.LoggingHooks(logger), metrics.Hooks())),
	}

	if cfg.RulesPath != "" {
		rules, err := eligibility.LoadRules(cfg.RulesPath)
		if err != nil {
			return fmt.Errorf("error loading rules: %w", err)
		}
		opts = append(opts, clearance.WithRules(rules))
		logger.Info("rules loaded", "path", cfg.RulesPath)
	}

	var store ports.SessionStore
	if cfg.Redis.Enabled() {
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithTTL(cfg.SessionTTL))
		defer rs.Client().Close()
		if err := rs.Ping(ctx); err != nil {
			return err
		}
		store = rs
		opts = append(opts, clearance.WithLocker(redis.NewLocker(rs.Client(), lockPrefix)))
		logger.Info("sessions in redis", "addr", cfg.Redis.Addr, "ttl", cfg.SessionTTL)
	} else {
		ms := memory.NewStore(memory.WithTTL(cfg.SessionTTL))
		go ms.RunJanitor(ctx, janitorInterval)
		store = ms
		logger.Info("sessions in memory", "ttl", cfg.SessionTTL)
	}
	store, err := sealSessions(store, cfg.Encryption)
	if err != nil {
		return err
	}
	opts = append(opts, clearance.WithStore(store))

	if cfg.RecordingEnabled() {
		rec, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer rec.Close()
		opts = append(opts, clearance.WithRecorder(observability.InstrumentRecorder(rec, metrics)))
		logger.Info("recording leads and events", "db", cfg.DBPath)
	}

	engine, err := clearance.New(opts...)
	if err != nil {
		return fmt.Errorf("error initializing engine: %w", err)
	}

	handler := httpAdapter.NewHandler(engine,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithMetrics(metrics),
		httpAdapter.WithAllowedOrigins(cfg.AllowedOrigins...),
		httpAdapter.WithRateLimit(cfg.RateLimit, cfg.RateWindow),
		httpAdapter.WithMaxInputSize(cfg.MaxInputSize),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "version", clearance.Version)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown did not complete", "error", err)
		return srv.Close()
	}
	logger.Info("server stopped")
	return nil
}

// sealSessions wraps store with at-rest encryption when keys are configured.
func sealSessions(store ports.SessionStore, keys config.EncryptionConfig) (ports.SessionStore, error) {
	if !keys.Enabled() {
		return store, nil
	}
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    keys.ActiveKey,
		FallbackKeys: keys.FallbackKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session encryption: %w", err)
	}
	return middleware.Chain(store, mw), nil
}
