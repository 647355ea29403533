package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. The checkout flow reads it but never writes:
// stock is advisory and managed out-of-band.
type Product struct {
	ID               uuid.UUID
	Name             string
	Description      string
	ImageURL         string
	Price            decimal.Decimal
	PromotionalPrice *decimal.Decimal
	Stock            int
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EffectivePrice is the promotional price when set, else the regular price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.PromotionalPrice != nil && p.PromotionalPrice.IsPositive() {
		return *p.PromotionalPrice
	}
	return p.Price
}
