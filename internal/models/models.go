package models

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

type Tier string

const (
	TierPrint   Tier = "PRINT"
	TierGallery Tier = "GALLERY"
)

// Identity is an authenticated subject. Visitors start out anonymous and may
// later be upgraded with an email address.
type Identity struct {
	ID        string
	Email     string
	Anonymous bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Memory is one charter moment: the submitted location and photos, the
// generated artwork, and the purchase record. Location and photos are
// immutable once the record exists; payment status only ever moves
// pending -> paid.
type Memory struct {
	ID             string
	OwnerID        string
	Location       string
	PhotoURLs      []string
	PreviewURL     string
	WatermarkedURL string
	// SourceURL is the re-hosted clean generation result. It is never
	// exposed through the API; the final deliverable is derived from it at
	// purchase time.
	SourceURL string
	FinalURL  string
	PaymentStatus  PaymentStatus
	PaymentAmount  int
	PurchaserEmail string
	Tier           Tier
	CreatedAt      time.Time
}
