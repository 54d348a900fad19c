// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/unidavemeyer/web-adventure/internal/auth"
	"github.com/unidavemeyer/web-adventure/internal/layout"
	"github.com/unidavemeyer/web-adventure/internal/logging"
	"github.com/unidavemeyer/web-adventure/internal/nav"
	"github.com/unidavemeyer/web-adventure/internal/observability"
	"github.com/unidavemeyer/web-adventure/internal/session"
	"github.com/unidavemeyer/web-adventure/internal/web"
)

// serveConfig holds configuration for the serve command. Values come from
// flag defaults, then the --config YAML file, then explicit flags.
type serveConfig struct {
	ListenAddr  string `koanf:"listen-addr"`
	MetricsAddr string `koanf:"metrics-addr"`
	DataDir     string `koanf:"data-dir"`
	Layout      string `koanf:"layout"`
	Sessions    string `koanf:"sessions"`
	LogFormat   string `koanf:"log-format"`
}

// Validate checks that the configuration is valid.
func (cfg *serveConfig) Validate() error {
	if cfg.ListenAddr == "" {
		return oops.Errorf("listen-addr is required")
	}
	if cfg.Layout == "" {
		return oops.Errorf("layout is required")
	}
	if cfg.Sessions == "" {
		return oops.Errorf("sessions is required")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return oops.Errorf("log-format must be 'json' or 'text', got %q", cfg.LogFormat)
	}
	return nil
}

// layoutPath resolves the layout file against the data directory.
func (cfg *serveConfig) layoutPath() string {
	if filepath.IsAbs(cfg.Layout) {
		return cfg.Layout
	}
	return filepath.Join(cfg.DataDir, cfg.Layout)
}

// sessionsDir resolves the session directory against the data directory.
func (cfg *serveConfig) sessionsDir() string {
	if filepath.IsAbs(cfg.Sessions) {
		return cfg.Sessions
	}
	return filepath.Join(cfg.DataDir, cfg.Sessions)
}

// Default values for serve command flags.
const (
	defaultListenAddr  = ":8000"
	defaultMetricsAddr = "127.0.0.1:9100"
	defaultLayout      = "game.yml"
	defaultSessions    = "sessions"
	defaultLogFormat   = "json"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the game server",
		Long: `Start the game server: load the room layout and the persisted
sessions, then serve player traffic over HTTP.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadServeConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("listen-addr", defaultListenAddr, "HTTP listen address")
	cmd.Flags().String("metrics-addr", defaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("data-dir", ".", "data directory")
	cmd.Flags().String("layout", defaultLayout, "room layout file, relative to data-dir")
	cmd.Flags().String("sessions", defaultSessions, "session directory, relative to data-dir")
	cmd.Flags().String("log-format", defaultLogFormat, "log format (json or text)")

	return cmd
}

// loadServeConfig merges flag defaults, the optional config file, and
// explicit flags into a serveConfig.
func loadServeConfig(flags *pflag.FlagSet) (*serveConfig, error) {
	k := koanf.New(".")

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), kyaml.Parser()); err != nil {
			return nil, oops.With("path", configFile).Wrapf(err, "loading config file")
		}
	}
	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return nil, oops.Wrapf(err, "loading flags")
	}

	var cfg serveConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Wrapf(err, "unmarshaling config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, oops.Wrapf(err, "invalid configuration")
	}
	return &cfg, nil
}

func runServe(ctx context.Context, cfg *serveConfig) error {
	logging.SetDefault("web-adventure", version, cfg.LogFormat)

	slog.Info("starting server",
		"listen_addr", cfg.ListenAddr,
		"layout", cfg.layoutPath(),
		"sessions", cfg.sessionsDir(),
	)

	// Metrics exist even when the observability server is disabled so the
	// transport never has to nil-check them.
	var obsServer *observability.Server
	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool { return true })
		metrics = obsServer.Metrics()
	} else {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	graph, loadErrs := layout.LoadFile(cfg.layoutPath())
	reportLoadErrors(metrics, loadErrs, "layout")
	if graph == nil {
		return loadErrs[0]
	}
	start, err := graph.StartRoom()
	if err != nil {
		return err
	}
	slog.Info("layout loaded", "rooms", graph.Len(), "start_room", start.Name)

	if err := os.MkdirAll(cfg.sessionsDir(), 0o700); err != nil {
		return oops.With("dir", cfg.sessionsDir()).Wrapf(err, "creating session directory")
	}
	store, sessErrs := session.LoadAll(cfg.sessionsDir())
	reportLoadErrors(metrics, sessErrs, "sessions")
	reportLoadErrors(metrics, store.ResolveRooms(graph), "sessions")
	slog.Info("sessions loaded", "count", store.Len())

	dispatcher := nav.NewDispatcher(graph)
	hasher := auth.NewPBKDF2Hasher()
	webServer := web.NewServer(graph, store, dispatcher, hasher, metrics)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var obsErrCh <-chan error
	if obsServer != nil {
		obsErrCh, err = obsServer.Start()
		if err != nil {
			return oops.Wrapf(err, "starting observability server")
		}
	}

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return oops.With("addr", cfg.ListenAddr).Wrapf(err, "listening")
	}
	httpServer := &http.Server{
		Handler:           webServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if serveErr := httpServer.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			errCh <- serveErr
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	slog.Info("server ready", "addr", listener.Addr().String())

	select {
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig)
	case serveErr := <-errCh:
		return oops.Wrapf(serveErr, "http server")
	case obsErr, ok := <-obsErrCh:
		if ok && obsErr != nil {
			return oops.Wrapf(obsErr, "observability server")
		}
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	slog.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("error stopping http server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

// reportLoadErrors logs best-effort load errors and counts them.
func reportLoadErrors(metrics *observability.Metrics, errs []error, source string) {
	for _, err := range errs {
		slog.Warn("load error", "source", source, "error", err)
		metrics.LoadErrorsTotal.Inc()
	}
}
