package pricing

import (
	"fmt"

	"github.com/boatmemories/backend/internal/models"
)

// Option is one purchasable catalog entry: the price in whole US dollars and
// the deliverable's print specification.
type Option struct {
	Tier          models.Tier `json:"tier"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Price         int         `json:"price"`
	MaxDimensions string      `json:"max_dimensions"`
	DPI           int         `json:"dpi"`
}

var catalog = map[models.Tier]Option{
	models.TierPrint: {
		Tier:          models.TierPrint,
		Name:          "Print File",
		Description:   "Standard resolution print file",
		Price:         39,
		MaxDimensions: "16x20in",
		DPI:           150,
	},
	models.TierGallery: {
		Tier:          models.TierGallery,
		Name:          "Gallery Edition",
		Description:   `High-resolution 24x36" print-ready file + Digital copy`,
		Price:         79,
		MaxDimensions: "24x36in",
		DPI:           300,
	},
}

// Lookup resolves a tier to its catalog entry.
func Lookup(tier models.Tier) (Option, error) {
	opt, ok := catalog[tier]
	if !ok {
		return Option{}, fmt.Errorf("unknown tier: %s", tier)
	}
	return opt, nil
}

// Options lists the catalog in a stable order for the pricing endpoint.
func Options() []Option {
	return []Option{catalog[models.TierPrint], catalog[models.TierGallery]}
}
