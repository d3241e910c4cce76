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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	shrub "github.com/denizsokullu/redux-shrub"
	"github.com/denizsokullu/redux-shrub/internal/config"
	"github.com/denizsokullu/redux-shrub/internal/logging"
	"github.com/denizsokullu/redux-shrub/internal/presentation/tui"
	"github.com/denizsokullu/redux-shrub/pkg/adapters/file"
	httpAdapter "github.com/denizsokullu/redux-shrub/pkg/adapters/http"
	"github.com/denizsokullu/redux-shrub/pkg/adapters/memory"
	"github.com/denizsokullu/redux-shrub/pkg/adapters/redis"
	"github.com/denizsokullu/redux-shrub/pkg/observability"
	"github.com/denizsokullu/redux-shrub/pkg/persistence/middleware"
	"github.com/denizsokullu/redux-shrub/pkg/ports"
	"github.com/denizsokullu/redux-shrub/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve <manifest>",
	Short: "Start the session HTTP server",
	Long: `Compiles the manifest and serves one state per session over a JSON API.
Configuration comes from SHRUB_* environment variables; flags override them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServe()
		if err != nil {
			return err
		}
		applyServeFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger := logging.NewWithWriter(os.Stderr, level, cfg.LogFormat)
		if cfg.LogFormat != "json" && tui.IsTerminal(os.Stderr) {
			tui.PrintBanner(os.Stderr, shrub.Version)
		}

		provider, err := loadProvider(cmd, args[0], logger)
		if err != nil {
			return err
		}

		store, locker, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}

		streams := httpAdapter.NewStreamManager(logger)
		opts := []session.Option{
			session.WithLogger(logger),
			session.WithLifecycleHooks(metrics.Hooks()),
			session.WithLifecycleHooks(observability.LogHooks(logger)),
			session.WithLifecycleHooks(streams.Hooks()),
		}
		if locker != nil {
			opts = append(opts, session.WithLocker(locker), session.WithLockTTL(cfg.LockTTL))
		}
		manager := session.NewManager(provider, store, opts...)

		srv := &http.Server{
			Addr: cfg.Addr,
			Handler: httpAdapter.NewHandler(manager, provider,
				httpAdapter.WithStreams(streams),
				httpAdapter.WithMetricsHandler(metrics.Handler()),
				httpAdapter.WithLogger(logger),
			),
		}
		return run(srv, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (SHRUB_ADDR)")
	serveCmd.Flags().String("store", "", "Snapshot store: memory, file or redis (SHRUB_STORE)")
	serveCmd.Flags().String("dir", "", "Directory of the file store (SHRUB_DIR)")
	serveCmd.Flags().String("redis-addr", "", "Redis address (SHRUB_REDIS_ADDR)")
	serveCmd.Flags().Duration("redis-ttl", 0, "Snapshot expiry in Redis (SHRUB_REDIS_TTL)")
	serveCmd.Flags().Bool("distributed-lock", false, "Lock sessions in Redis across replicas (SHRUB_DISTRIBUTED_LOCK)")
}

// applyServeFlags overrides cfg with the flags the user actually set.
func applyServeFlags(cmd *cobra.Command, cfg *config.Serve) {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("store") {
		cfg.Store, _ = flags.GetString("store")
	}
	if flags.Changed("dir") {
		cfg.Dir, _ = flags.GetString("dir")
	}
	if flags.Changed("redis-addr") {
		cfg.RedisAddr, _ = flags.GetString("redis-addr")
	}
	if flags.Changed("redis-ttl") {
		cfg.RedisTTL, _ = flags.GetDuration("redis-ttl")
	}
	if flags.Changed("distributed-lock") {
		cfg.DistributedLock, _ = flags.GetBool("distributed-lock")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
}

// openStore builds the configured backend, wrapped in masking and encryption when enabled.
func openStore(cfg config.Serve) (ports.SnapshotStore, ports.DistributedLocker, func(), error) {
	store, locker, closeStore, err := openBackend(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	var mws []middleware.Middleware
	if len(cfg.MaskKeys) > 0 {
		mw, err := middleware.NewPIIMiddleware(cfg.MaskKeys)
		if err != nil {
			closeStore()
			return nil, nil, nil, err
		}
		mws = append(mws, mw)
	}
	active, fallback, err := cfg.EncryptionKeys()
	if err != nil {
		closeStore()
		return nil, nil, nil, err
	}
	if active != nil {
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
		if err != nil {
			closeStore()
			return nil, nil, nil, err
		}
		mws = append(mws, mw)
	}
	return middleware.Chain(store, mws...), locker, closeStore, nil
}

func openBackend(cfg config.Serve) (ports.SnapshotStore, ports.DistributedLocker, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.NewStore(), nil, func() {}, nil
	case config.StoreFile:
		return file.New(cfg.Dir), nil, func() {}, nil
	case config.StoreRedis:
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			redis.WithPrefix(cfg.RedisPrefix),
			redis.WithTTL(cfg.RedisTTL),
		)
		var locker ports.DistributedLocker
		if cfg.DistributedLock {
			locker = redis.NewLocker(store.Client(), cfg.RedisPrefix)
		}
		return store, locker, func() { _ = store.Close() }, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// run serves until SIGINT or SIGTERM, then drains requests for cfg.ShutdownTimeout.
func run(srv *http.Server, cfg config.Serve, logger *slog.Logger) error {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting shrub server", "addr", srv.Addr, "store", cfg.Store)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown did not complete", "timeout", cfg.ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		logger.Info("shrub server stopped gracefully")
		return nil
	}
}
