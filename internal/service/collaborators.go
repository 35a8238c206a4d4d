package service

import (
	"context"

	"github.com/boatmemories/backend/internal/models"
	"github.com/boatmemories/backend/internal/stripe"
)

// The services talk to storage and the external collaborators through these
// narrow interfaces; tests substitute fakes.

type MemoryStore interface {
	Insert(ctx context.Context, m *models.Memory) error
	Get(ctx context.Context, id string) (*models.Memory, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Memory, error)
	MarkPaid(ctx context.Context, id string, finalURL string, amount int, email string, tier models.Tier) error
	Reassign(ctx context.Context, fromOwner, toOwner string) error
}

type IdentityStore interface {
	Create(ctx context.Context, identity *models.Identity) error
	Get(ctx context.Context, id string) (*models.Identity, error)
	SetEmail(ctx context.Context, id, email string) error
}

type ObjectStore interface {
	Upload(ctx context.Context, prefix string, data []byte, contentType string) (string, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type PaymentProcessor interface {
	Charge(ctx context.Context, req stripe.ChargeRequest) (*stripe.Receipt, error)
}

type ArtworkFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}
