package main

import (
	"SecretKeeper/internal/blindindex"
	"SecretKeeper/internal/config"
	"SecretKeeper/internal/events"
	"SecretKeeper/internal/handlers"
	"SecretKeeper/internal/keys"
	"SecretKeeper/internal/metrics"
	"SecretKeeper/internal/middleware"
	"SecretKeeper/internal/repo"
	"SecretKeeper/internal/service"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/awnumar/memguard"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()
	// затираем ключи при выходе
	defer memguard.Purge()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, sugar); err != nil {
		sugar.Errorw("Server failed", "error", err)
		cancel()
		memguard.Purge()
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) error {
	legacy, root := cfg.EncryptionKey, cfg.RootEncryptionKey
	if cfg.KeysFile != "" {
		fileLegacy, fileRoot, err := keys.LoadFile(cfg.KeysFile)
		if err != nil {
			return err
		}
		legacy, root = fileLegacy, fileRoot
	}
	provider, err := keys.New(legacy, root)
	if err != nil {
		return err
	}
	defer provider.Destroy()

	if cfg.KeysFile != "" {
		go func() {
			if err := keys.Watch(ctx, cfg.KeysFile, provider, sugar); err != nil {
				sugar.Errorw("Keys watcher stopped", "error", err)
			}
		}()
	}

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	collector := metrics.NewCollector(nil)

	sinks := events.Sinks{
		Versions:  repo.NewVersionRepository(gormDB),
		Audit:     repo.NewAuditRepository(gormDB),
		Snapshots: repo.NewSnapshotRepository(gormDB),
	}
	if cfg.TelemetryEnabled {
		sinks.Telemetry = metrics.NewTelemetry(collector, sugar)
	}
	dispatcher := events.NewDispatcher(sinks, cfg.EventBuffer, sugar, collector)
	defer dispatcher.Close()

	saltStore := blindindex.NewSaltStore(repo.NewSaltRepository(gormDB), provider)
	generator := blindindex.NewGenerator(saltStore, blindindex.DefaultParams, collector)
	secretService := service.NewSecretService(
		repo.NewSecretRepository(gormDB),
		generator,
		saltStore,
		dispatcher,
		collector,
		sugar,
	)

	h := handlers.NewHandler(secretService, collector.Handler(), sugar, cfg)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"DatabaseDSN", cfg.DatabaseDSN,
		"KeysFile", cfg.KeysFile,
		"KeyEncoding", provider.Preferred(),
		"Telemetry", cfg.TelemetryEnabled,
	)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("Starting server", "addr", cfg.BaseURL)
		var err error
		if cfg.EnableHTTPS {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sugar.Infow("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
