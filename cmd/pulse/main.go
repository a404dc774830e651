package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/pulsevideo/pulse/config"
	"github.com/pulsevideo/pulse/internal/adapter/blob/fs"
	"github.com/pulsevideo/pulse/internal/adapter/blob/s3"
	HTTPAdapter "github.com/pulsevideo/pulse/internal/adapter/http"
	"github.com/pulsevideo/pulse/internal/adapter/probe/ffprobe"
	sqlitestore "github.com/pulsevideo/pulse/internal/adapter/storage/sqlite"
	"github.com/pulsevideo/pulse/internal/infrastructure/logger"
	"github.com/pulsevideo/pulse/internal/port"
	"github.com/pulsevideo/pulse/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Setup(cfg.LogLevel, cfg.LogPretty)
	log.Info().Int("port", cfg.Port).Str("storage", cfg.StorageBackend).Msg("starting pulse")

	uploadDir := filepath.Join(cfg.DataDir, "uploads")
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create data directory")
	}

	store, err := sqlitestore.NewStore(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer func() { _ = store.Close() }()
	userStore := sqlitestore.NewUserStore(store)

	var blobs port.BlobStore
	switch cfg.StorageBackend {
	case config.StorageBackendS3:
		blobs, err = s3.NewBlobStore(context.Background(), s3.Options{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
	default:
		blobs, err = fs.NewBlobStore(uploadDir)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize blob storage")
	}

	eventBus := service.NewEventBus()
	pipeline := service.NewPipeline(store, ffprobe.New(), eventBus, blobs, cfg.StepInterval)

	videoSvc := service.NewVideoService(store, blobs, pipeline, cfg.MaxUploadBytes())
	authSvc := service.NewAuthService(userStore, cfg.JWTSecret)

	server := HTTPAdapter.NewServer(authSvc, videoSvc, eventBus, cfg.ClientOrigin, cfg.MaxUploadBytes())

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server,
		// Long timeouts: uploads are large and SSE connections are
		// intentionally long-lived.
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown error")
		}
	}()

	log.Info().Str("addr", addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("shutdown complete")
}
