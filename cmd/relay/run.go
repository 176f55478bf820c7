package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"hypedigitaly/claude-relay/pkg/cli"
	"hypedigitaly/claude-relay/pkg/config"
	"hypedigitaly/claude-relay/pkg/proxy/handlers"
	"hypedigitaly/claude-relay/pkg/relay"
	"hypedigitaly/claude-relay/pkg/server"
	"hypedigitaly/claude-relay/pkg/telemetry/health"
	"hypedigitaly/claude-relay/pkg/telemetry/logging"
	"hypedigitaly/claude-relay/pkg/telemetry/metrics"
	"hypedigitaly/claude-relay/pkg/telemetry/tracing"
	"hypedigitaly/claude-relay/pkg/upstream"

	"github.com/spf13/cobra"
)

// tracerShutdownTimeout bounds the final span flush on exit.
const tracerShutdownTimeout = 5 * time.Second

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	watch         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the relay server",
	Long: `Start the relay server with the specified configuration.

The process refuses to start when no API key is configured.

Examples:
  # Start with defaults
  relay run

  # Start with a config file, reloading the log level when it changes
  relay run --config /etc/relay/relay.yaml --watch

  # Override listen address
  relay run --listen 127.0.0.1:8080

  # Validate config and exit
  relay run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "reload the log level when the config file changes")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	slog.SetDefault(logger.Logger)

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	ctx, cancel := cli.SetupSignalHandler(context.Background(), logger.Logger)
	defer cancel()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if runFlags.watch && cfgFile != "" {
		go a.watchConfig(ctx, cfgFile, runFlags.logLevel != "")
	}

	logger.Info("relay configured",
		"upstream", cfg.Upstream.BaseURL,
		"forward_scope", cfg.Relay.ForwardScope,
		"idle_timeout", cfg.Upstream.IdleTimeout.String(),
		"tracing", a.tracer.Enabled(),
	)

	if err := a.server.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	return logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Redact:    cfg.Telemetry.Logging.RedactionEnabled(),
		Writer:    os.Stdout,
	})
}

// app holds the long-lived components of a running relay.
type app struct {
	logger  *logging.Logger
	tracer  *tracing.Tracer
	metrics *metrics.Collector
	server  *server.Server
}

// newApp builds every component from cfg. Nothing listens until
// server.Start or server.Serve is called.
func newApp(cfg *config.Config, logger *logging.Logger) (*app, error) {
	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	client := upstream.NewClient(upstream.Config{
		BaseURL:               cfg.Upstream.BaseURL,
		APIKey:                cfg.Upstream.APIKey,
		APIVersion:            cfg.Upstream.APIVersion,
		BetaHeader:            cfg.Upstream.BetaHeader,
		ConnectTimeout:        cfg.Upstream.ConnectTimeout,
		ResponseHeaderTimeout: cfg.Upstream.ResponseHeaderTimeout,
	}, logger.Logger, upstream.WithTracer(tracer.Tracer()))

	scope, err := relay.ParseScope(cfg.Relay.ForwardScope)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	rl := relay.New(relay.Options{
		Scope:       scope,
		EmitDone:    cfg.Relay.EmitDone,
		IdleTimeout: cfg.Upstream.IdleTimeout,
	}, logger.Logger, collector)

	chat := handlers.NewChatHandler(&cfg.Relay, client, rl, collector, logger.Logger)

	checker := health.New(cfg.Upstream.ConnectTimeout)
	addr, err := health.UpstreamAddress(cfg.Upstream.BaseURL)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, fmt.Errorf("upstream.base_url: %w", err))
	}
	checker.Register("upstream", health.DialCheck(addr))

	srv := server.New(cfg, chat, server.Options{
		Logger:  logger.Logger,
		Metrics: collector,
		Tracer:  tracer,
		Health:  checker,
	})

	return &app{
		logger:  logger,
		tracer:  tracer,
		metrics: collector,
		server:  srv,
	}, nil
}

// watchConfig applies log level changes from the config file until ctx is
// done. Nothing else is reloaded; the credential in particular is fixed for
// the life of the process.
func (a *app) watchConfig(ctx context.Context, path string, levelPinned bool) {
	w := config.NewWatcher(path, os.Getenv, a.logger.Logger)
	err := w.Watch(ctx, func(cfg *config.Config) {
		if levelPinned {
			return
		}
		if err := a.logger.SetLevel(cfg.Telemetry.Logging.Level); err != nil {
			a.logger.Error("ignoring reloaded log level", "error", err)
			return
		}
		a.logger.Info("log level updated", "level", a.logger.Level().String())
	})
	if err != nil {
		a.logger.Error("config watcher stopped", "error", err)
	}
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
	defer cancel()
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("failed to flush traces", "error", err)
	}
}
