package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sockgate/sockgate/internal/adapter/inbound/http"
	"github.com/sockgate/sockgate/internal/adapter/outbound/memory"
	"github.com/sockgate/sockgate/internal/adapter/outbound/sqlite"
	"github.com/sockgate/sockgate/internal/config"
	"github.com/sockgate/sockgate/internal/domain/connection"
	"github.com/sockgate/sockgate/internal/domain/event"
	"github.com/sockgate/sockgate/internal/service"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the gateway server",
	Long: `Start the sockgate gateway server.

The server receives gateway-forwarded WebSocket events under /ws/ and
dispatches them: /ws/connect and /ws/disconnect are lifecycle events,
everything else selects a handler by the route key in the message body.

Examples:
  # Start with config file settings
  sockgate start

  # Start with a specific config file
  sockgate --config /path/to/config.yaml start

  # Start on a different address
  sockgate start --addr :9090`,
	RunE: runStart,
}

var listenAddr string

func init() {
	startCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// CLI flag overrides config
	if listenAddr != "" {
		cfg.Server.Addr = listenAddr
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))
	slog.SetDefault(logger)

	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	store, closeStore, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := service.NewGatewayService(cfg, store, logger)

	// Built-in heartbeat route. Deployments register their own handlers;
	// unregistered routes fail loudly with 501.
	if err := svc.RegisterHandler("ping", func(ctx context.Context, ev *event.InboundEvent) (event.Response, error) {
		return event.OKBody(map[string]any{"message": "pong"}), nil
	}); err != nil {
		return err
	}

	transport := http.NewTransport(svc,
		http.WithAddr(cfg.Server.Addr),
		http.WithLogger(logger),
		http.WithShutdownTimeout(cfg.ShutdownTimeoutDuration()),
		http.WithHealthChecker(http.NewHealthChecker(store, Version)),
	)

	// stop() restores default signal handling so a second Ctrl+C does a hard kill.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting sockgate",
		"version", Version,
		"store", cfg.Store.Backend,
		"gateway_id", cfg.Gateway.ExpectedGatewayID,
	)
	return transport.Start(ctx)
}

// buildStore constructs the configured connection store and its cleanup.
func buildStore(cfg *config.Config) (connection.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreBackendSQLite:
		store, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open connection store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	case config.StoreBackendNone:
		return connection.NopStore{}, func() {}, nil
	default:
		return memory.NewConnectionStore(), func() {}, nil
	}
}

// parseLogLevel maps the configured level name to a slog level, defaulting
// to info.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
