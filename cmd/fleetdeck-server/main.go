package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kantai-tool/fleetdeck/internal/adapters/httpapi"
	"github.com/kantai-tool/fleetdeck/internal/adapters/metrics"
	"github.com/kantai-tool/fleetdeck/internal/adapters/persistence"
	"github.com/kantai-tool/fleetdeck/internal/application/auth"
	"github.com/kantai-tool/fleetdeck/internal/application/mediator"
	appStorage "github.com/kantai-tool/fleetdeck/internal/application/storage"
	"github.com/kantai-tool/fleetdeck/internal/domain/storage"
	"github.com/kantai-tool/fleetdeck/internal/infrastructure/config"
	"github.com/kantai-tool/fleetdeck/internal/infrastructure/database"
	"github.com/kantai-tool/fleetdeck/internal/infrastructure/logging"
	"github.com/kantai-tool/fleetdeck/internal/infrastructure/pidfile"
)

func main() {
	configFlag := flag.String("config", "", "Path to config.yaml (default: search ./, ./configs, /etc/fleetdeck)")
	flag.Parse()

	cfg := config.MustLoadConfig(*configFlag)

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Server.PIDFile != "" {
		pf := pidfile.New(cfg.Server.PIDFile)
		if err := pf.Acquire(); err != nil {
			logger.Fatal("failed to acquire PID file lock", zap.String("path", pf.Path()), zap.Error(err))
		}
		defer func() {
			if err := pf.Release(); err != nil {
				logger.Warn("failed to release PID file", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("fatal error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// 1. Storage backend
	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// 2. Metrics
	var collectors *metrics.Collectors
	if cfg.Metrics.Enabled {
		if collectors, err = metrics.New(cfg.Metrics.Namespace); err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}
		logger.Info("metrics enabled", zap.String("path", cfg.Metrics.Path))
	}

	// 3. Mediator (middleware before handlers)
	med := mediator.NewMediator()
	med.Use(auth.UsernameMiddleware())
	if collectors.IsEnabled() {
		med.Use(metrics.PrometheusMiddleware(collectors.Commands))
	}
	if err := appStorage.RegisterHandlers(med, store); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}

	// 4. HTTP server
	srv := httpapi.NewServer(cfg.Server, cfg.Metrics.Path, med, logger, collectors)
	return srv.Run(ctx)
}

// openStore selects the document store configured for this server
func openStore(cfg *config.Config, logger *zap.Logger) (storage.DocumentStore, func(), error) {
	switch cfg.Storage.Backend {
	case "database":
		db, err := database.Open(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("database storage", zap.String("type", cfg.Database.Type))
		return persistence.NewGormDocumentRepository(db), func() {
			if err := database.Close(db); err != nil {
				logger.Warn("failed to close database", zap.Error(err))
			}
		}, nil
	default:
		store, err := persistence.NewFileDocumentStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open data directory: %w", err)
		}
		logger.Info("file storage", zap.String("dir", cfg.Storage.DataDir))
		return store, func() {}, nil
	}
}
