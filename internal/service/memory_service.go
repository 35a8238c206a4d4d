package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/boatmemories/backend/internal/artwork"
	"github.com/boatmemories/backend/internal/models"
	"github.com/boatmemories/backend/internal/pricing"
	"github.com/boatmemories/backend/internal/repository"
	"github.com/boatmemories/backend/internal/stripe"
)

// PhotoUpload is one submitted yacht photo.
type PhotoUpload struct {
	Data        []byte
	ContentType string
}

// MemoryService is the lifecycle controller: it owns every transition a
// memory makes from submission through artwork generation to a paid,
// downloadable asset. Neither CreateMemory nor CompletePurchase is retried
// here; generation and charging are not idempotent, so retries stay a
// user-initiated action.
type MemoryService struct {
	log               *slog.Logger
	memories          MemoryStore
	identities        IdentityStore
	store             ObjectStore
	generator         Generator
	payments          PaymentProcessor
	fetcher           ArtworkFetcher
	photoPrefix       string
	artworkPrefix     string
	maxPhotoBytes     int64
	maxPhotos         int
	deriveWatermarked func(data []byte) ([]byte, error)
	deriveFinal       func(data []byte) ([]byte, error)
}

type MemoryServiceConfig struct {
	PhotoPrefix   string
	ArtworkPrefix string
	MaxPhotoBytes int64
	MaxPhotos     int
}

func NewMemoryService(log *slog.Logger, cfg MemoryServiceConfig, memories MemoryStore, identities IdentityStore,
	store ObjectStore, generator Generator, payments PaymentProcessor, fetcher ArtworkFetcher) *MemoryService {
	if cfg.PhotoPrefix == "" {
		cfg.PhotoPrefix = "photos"
	}
	if cfg.ArtworkPrefix == "" {
		cfg.ArtworkPrefix = "artwork"
	}
	if cfg.MaxPhotoBytes <= 0 {
		cfg.MaxPhotoBytes = 10 << 20
	}
	if cfg.MaxPhotos <= 0 {
		cfg.MaxPhotos = 3
	}
	return &MemoryService{
		log:               log,
		memories:          memories,
		identities:        identities,
		store:             store,
		generator:         generator,
		payments:          payments,
		fetcher:           fetcher,
		photoPrefix:       cfg.PhotoPrefix,
		artworkPrefix:     cfg.ArtworkPrefix,
		maxPhotoBytes:     cfg.MaxPhotoBytes,
		maxPhotos:         cfg.MaxPhotos,
		deriveWatermarked: artwork.DeriveWatermarked,
		deriveFinal:       artwork.DeriveFinal,
	}
}

// CreateMemory validates the submission, uploads the photos, runs one artwork
// generation, and persists the memory already in its preview-ready state.
// Nothing is persisted on any failure; already-uploaded photos are orphaned
// objects the bucket can keep.
func (s *MemoryService) CreateMemory(ctx context.Context, ownerID, location string, photos []PhotoUpload) (*models.Memory, error) {
	if err := s.validateSubmission(ctx, ownerID, location, photos); err != nil {
		return nil, err
	}

	photoURLs, err := s.uploadPhotos(ctx, photos)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	generatedURL, err := s.generator.Generate(ctx, pricing.Prompt(location))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	source, _, err := s.fetcher.Fetch(ctx, generatedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	marked, err := s.deriveWatermarked(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	watermarkedURL, err := s.store.Upload(ctx, s.artworkPrefix, marked, "image/png")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	sourceURL, err := s.store.Upload(ctx, s.artworkPrefix, source, "image/png")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	memory := &models.Memory{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Location:       location,
		PhotoURLs:      photoURLs,
		PreviewURL:     watermarkedURL,
		WatermarkedURL: watermarkedURL,
		SourceURL:      sourceURL,
		PaymentStatus:  models.PaymentPending,
	}
	if err := s.memories.Insert(ctx, memory); err != nil {
		return nil, fmt.Errorf("persist memory: %w", err)
	}

	s.log.Info("memory created", "memory_id", memory.ID, "owner_id", ownerID, "location", location, "photos", len(photoURLs))
	return memory, nil
}

// GetMemory returns the memory iff the requester owns it. A memory owned by
// someone else looks exactly like a missing one.
func (s *MemoryService) GetMemory(ctx context.Context, requesterID, id string) (*models.Memory, error) {
	return s.getOwned(ctx, requesterID, id)
}

// ListMemories returns the requester's memories, newest first.
func (s *MemoryService) ListMemories(ctx context.Context, requesterID string) ([]models.Memory, error) {
	memories, err := s.memories.ListByOwner(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	return memories, nil
}

// CompletePurchase derives the clean deliverable, charges the card, and flips
// the memory to paid in one compare-and-set. The charge happens only after
// the deliverable exists, so a paid record never lacks its asset; a repeat
// purchase fails before any charge is attempted.
func (s *MemoryService) CompletePurchase(ctx context.Context, requesterID, id string, tier models.Tier, email, methodToken string) (*models.Memory, error) {
	memory, err := s.getOwned(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}
	if memory.PaymentStatus == models.PaymentPaid {
		return nil, repository.ErrAlreadyPurchased
	}

	option, err := pricing.Lookup(tier)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if strings.TrimSpace(methodToken) == "" {
		return nil, fmt.Errorf("%w: payment method is required", ErrValidation)
	}

	source, _, err := s.fetcher.Fetch(ctx, memory.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	final, err := s.deriveFinal(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	finalURL, err := s.store.Upload(ctx, s.artworkPrefix, final, "image/png")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	receipt, err := s.payments.Charge(ctx, stripe.ChargeRequest{
		AmountMinorUnits: option.Price * 100,
		Currency:         "usd",
		MethodToken:      methodToken,
		Email:            email,
		IdempotencyKey:   "purchase-" + memory.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayment, err)
	}

	if err := s.memories.MarkPaid(ctx, memory.ID, finalURL, option.Price, email, tier); err != nil {
		if errors.Is(err, repository.ErrAlreadyPurchased) || errors.Is(err, repository.ErrInvalidTransition) {
			// The charge went through but the row moved underneath us.
			// That is a race or a bug, not user error; keep the receipt
			// in the log for reconciliation.
			s.log.Error("paid charge lost the purchase race", "memory_id", memory.ID, "receipt_id", receipt.ID, "err", err)
		}
		return nil, fmt.Errorf("record purchase: %w", err)
	}

	memory.PaymentStatus = models.PaymentPaid
	memory.PaymentAmount = option.Price
	memory.PurchaserEmail = email
	memory.Tier = tier
	memory.FinalURL = finalURL

	s.log.Info("memory purchased", "memory_id", memory.ID, "tier", tier, "amount", option.Price, "receipt_id", receipt.ID)
	return memory, nil
}

// DownloadAsset returns the final asset URL. This is the sole gate protecting
// the paid deliverable.
func (s *MemoryService) DownloadAsset(ctx context.Context, requesterID, id string) (string, error) {
	memory, err := s.getOwned(ctx, requesterID, id)
	if err != nil {
		return "", err
	}
	if memory.PaymentStatus != models.PaymentPaid || memory.FinalURL == "" {
		return "", ErrNotPurchased
	}
	return memory.FinalURL, nil
}

func (s *MemoryService) getOwned(ctx context.Context, requesterID, id string) (*models.Memory, error) {
	if requesterID == "" || id == "" {
		return nil, ErrNotFound
	}
	memory, err := s.memories.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get memory: %w", err)
	}
	if memory == nil || memory.OwnerID != requesterID {
		return nil, ErrNotFound
	}
	return memory, nil
}

func (s *MemoryService) validateSubmission(ctx context.Context, ownerID, location string, photos []PhotoUpload) error {
	if ownerID == "" {
		return fmt.Errorf("%w: owner is required", ErrValidation)
	}
	identity, err := s.identities.Get(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("resolve owner: %w", err)
	}
	if identity == nil {
		return fmt.Errorf("%w: unknown identity", ErrValidation)
	}
	if !pricing.ValidLocation(location) {
		return fmt.Errorf("%w: unsupported location %q", ErrValidation, location)
	}
	if len(photos) == 0 {
		return fmt.Errorf("%w: at least one photo is required", ErrValidation)
	}
	if len(photos) > s.maxPhotos {
		return fmt.Errorf("%w: at most %d photos are allowed", ErrValidation, s.maxPhotos)
	}
	for i, photo := range photos {
		if len(photo.Data) == 0 {
			return fmt.Errorf("%w: photo %d is empty", ErrValidation, i+1)
		}
		if int64(len(photo.Data)) > s.maxPhotoBytes {
			return fmt.Errorf("%w: photo %d exceeds %d bytes", ErrValidation, i+1, s.maxPhotoBytes)
		}
		if !strings.HasPrefix(photo.ContentType, "image/") {
			return fmt.Errorf("%w: photo %d is not an image", ErrValidation, i+1)
		}
	}
	return nil
}

// uploadPhotos pushes the photos concurrently and reassembles the URLs by
// original input index, not completion order.
func (s *MemoryService) uploadPhotos(ctx context.Context, photos []PhotoUpload) ([]string, error) {
	urls := make([]string, len(photos))
	g, gctx := errgroup.WithContext(ctx)
	for i, photo := range photos {
		i, photo := i, photo
		g.Go(func() error {
			u, err := s.store.Upload(gctx, s.photoPrefix, photo.Data, photo.ContentType)
			if err != nil {
				return fmt.Errorf("upload photo %d: %w", i+1, err)
			}
			urls[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}
