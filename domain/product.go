package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	Price              decimal.Decimal  `json:"price"`
	Category           string           `json:"category"`
	VendorID           string           `json:"vendor_id"`
	ImageFilename      string           `json:"image_filename"`
	IsActive           bool             `json:"is_active"`
	Stock              int              `json:"stock"`
	IsPromotional      bool             `json:"is_promotional"`
	PromotionalPrice   *decimal.Decimal `json:"promotional_price,omitempty"`
	PromotionalEndDate *time.Time       `json:"promotional_end_date,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
}

// IsCurrentlyPromotional reports whether the promotional window is open at now.
func (p Product) IsCurrentlyPromotional(now time.Time) bool {
	return p.IsPromotional && p.PromotionalEndDate != nil && p.PromotionalEndDate.After(now)
}

// EffectivePrice is the unit price a buyer pays at now.
func (p Product) EffectivePrice(now time.Time) decimal.Decimal {
	if p.IsCurrentlyPromotional(now) && p.PromotionalPrice != nil {
		return *p.PromotionalPrice
	}

	return p.Price
}
