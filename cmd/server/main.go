package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/boatmemories/backend/internal/api"
	"github.com/boatmemories/backend/internal/artwork"
	"github.com/boatmemories/backend/internal/config"
	"github.com/boatmemories/backend/internal/database"
	"github.com/boatmemories/backend/internal/openai"
	"github.com/boatmemories/backend/internal/repository"
	"github.com/boatmemories/backend/internal/service"
	"github.com/boatmemories/backend/internal/storage"
	"github.com/boatmemories/backend/internal/stripe"
	"github.com/boatmemories/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logr := logger.New()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("database migrate: %v", err)
	}

	memoryRepo := repository.NewMemoryRepository(db)
	identityRepo := repository.NewIdentityRepository(db)

	uploader, err := storage.NewUploader(storage.Config{
		Endpoint:      cfg.S3Endpoint,
		Region:        cfg.S3Region,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.S3PublicBaseURL,
		UsePathStyle:  cfg.S3UsePathStyle,
	})
	if err != nil {
		log.Fatalf("storage uploader: %v", err)
	}

	generator := openai.NewClient(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.RequestTimeout,
	}, logr)

	payments := stripe.NewClient(stripe.Config{
		SecretKey: cfg.StripeSecretKey,
		BaseURL:   cfg.StripeBaseURL,
	}, logr)

	fetcher := artwork.NewFetcher(cfg.RequestTimeout)

	identityService := service.NewIdentityService(identityRepo, memoryRepo, cfg.JWTSecret)
	memoryService := service.NewMemoryService(logr, service.MemoryServiceConfig{
		PhotoPrefix:   cfg.S3PhotoPrefix,
		ArtworkPrefix: cfg.S3ArtworkPrefix,
		MaxPhotoBytes: cfg.MaxPhotoBytes,
		MaxPhotos:     cfg.MaxPhotos,
	}, memoryRepo, identityRepo, uploader, generator, payments, fetcher)

	server := api.NewServer(cfg.ListenAddr, logr, identityService, memoryService, cfg.MaxPhotoBytes, cfg.MaxPhotos)
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logr.Error("api server stopped", "err", err)
	}
}
