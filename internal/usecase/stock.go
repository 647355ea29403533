package usecase

import (
	"fmt"

	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
)

// StockStatus is the availability decision for a requested quantity plus a
// message suitable for direct display.
type StockStatus struct {
	Available bool
	Message   string
}

// ValidateAvailability decides whether requested units of p can be sold.
// Pure function of its inputs; it never mutates stock. The zero-stock case
// is reported ahead of the generic insufficient-stock case so the customer
// sees "out of stock" instead of "0 units available".
func ValidateAvailability(p *entity.Product, requested int) StockStatus {
	if p == nil {
		return StockStatus{Available: false, Message: "product not found"}
	}
	if !p.Active {
		return StockStatus{Available: false, Message: "product is no longer available"}
	}
	if p.Stock == 0 {
		return StockStatus{Available: false, Message: "product is out of stock"}
	}
	if p.Stock < requested {
		return StockStatus{
			Available: false,
			Message:   fmt.Sprintf("insufficient stock: %d units available", p.Stock),
		}
	}
	return StockStatus{
		Available: true,
		Message:   fmt.Sprintf("%d units in stock", p.Stock),
	}
}
