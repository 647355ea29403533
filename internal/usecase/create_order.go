package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
	"github.com/comeca-ai/leao-pet-vitality/internal/logging"
)

type CreateOrderItem struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

type CreateOrderInput struct {
	UserID        *uuid.UUID // nil for guest checkout
	AddressID     *uuid.UUID
	PaymentMethod entity.PaymentMethod
	Status        entity.Status // zero value means initiated
	Items         []CreateOrderItem
}

// CreateOrder persists an order aggregate. The header and all line items
// are written in one transaction; an order header with zero line items
// never survives.
type CreateOrder struct {
	orders OrderRepo
	log    *slog.Logger
}

func NewCreateOrder(orders OrderRepo) *CreateOrder {
	return &CreateOrder{orders: orders, log: logging.New("orders")}
}

func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) (*entity.Order, error) {
	if len(in.Items) == 0 {
		return nil, E(KindValidation, "order must have at least one line item")
	}

	status := in.Status
	if status == "" {
		status = entity.StatusInitiated
	}

	now := time.Now().UTC()
	order := &entity.Order{
		ID:            uuid.New(),
		UserID:        in.UserID,
		AddressID:     in.AddressID,
		PaymentMethod: in.PaymentMethod,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	total := decimal.Zero
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, E(KindValidation, "line item quantity must be positive")
		}
		if !it.UnitPrice.IsPositive() {
			return nil, E(KindValidation, "line item unit price must be positive")
		}
		subtotal := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		order.Items = append(order.Items, entity.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}
	order.Total = total

	if err := order.Validate(); err != nil {
		return nil, Ef(KindValidation, "invalid order", err)
	}

	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, Ef(KindInternal, "persist order", err)
	}

	uc.log.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"status", order.Status,
		"total", order.Total.String(),
		"items", len(order.Items),
	)
	return order, nil
}
