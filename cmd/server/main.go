package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"afipimport/internal/config"
	"afipimport/internal/email/noop"
	"afipimport/internal/email/ses"
	"afipimport/internal/handler"
	"afipimport/internal/logger"
	"afipimport/internal/port"
	"afipimport/internal/registry"
	"afipimport/internal/repository/postgres"
	"afipimport/internal/router"
	"afipimport/internal/service"
	s3storage "afipimport/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Setup(cfg.Log); err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	ledgerRepo := postgres.NewLedgerRepo(db)
	partyRepo := postgres.NewPartyRepo(db)
	configRepo := postgres.NewImportConfigRepo(db)

	// Initialize storage
	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	} else {
		log.Warn().Str("component", "server").Msg("no S3 bucket configured, uploads will not be archived")
	}

	if !cfg.Registry.Enabled() {
		log.Warn().Str("component", "server").Msg("no registry gateway configured, new parties get the company address")
	}

	notifier, err := newReviewNotifier(ctx, &cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize email notifier: %w", err)
	}

	// Initialize services
	authSvc := service.NewAuthService(&cfg.JWT)
	importSvc := service.NewImportService(
		ledgerRepo, partyRepo, registry.New(&cfg.Registry), configRepo, storage, notifier, &cfg.S3, &cfg.Import,
	)

	// Initialize handlers
	importH := handler.NewImportHandler(importSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg.CORS.AllowedOrigins, authSvc, importH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("component", "server").Str("addr", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Str("component", "server").Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newReviewNotifier(ctx context.Context, cfg *config.EmailConfig) (port.ReviewNotifier, error) {
	if cfg.Provider != "ses" || len(cfg.ReviewRecipients) == 0 {
		log.Info().Str("component", "server").Msg("review notifications go to the log")
		return noop.NewNoopNotifier(), nil
	}
	return ses.NewSESNotifier(ctx, cfg.Region, cfg.FromAddress, cfg.FromName, cfg.ReviewRecipients)
}
