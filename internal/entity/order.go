package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusInitiated       Status = "initiated"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusPaid            Status = "paid"
	StatusCancelled       Status = "cancelled"
	StatusWhatsApp        Status = "whatsapp"
)

type PaymentMethod string

const (
	MethodCard     PaymentMethod = "card"
	MethodPix      PaymentMethod = "pix"
	MethodBoleto   PaymentMethod = "boleto"
	MethodWhatsApp PaymentMethod = "whatsapp"
)

var (
	ErrInvalidTotal  = errors.New("order total must be positive")
	ErrNoItems       = errors.New("order must have at least one line item")
	ErrTotalMismatch = errors.New("order total does not match sum of line item subtotals")
)

// IsTerminal reports whether no transition is defined out of s.
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled || s == StatusWhatsApp
}

// CanTransition encodes the order state machine. Only forward edges exist;
// a succeeded/failed webhook may land while the order is still initiated
// (the awaiting_payment update is allowed to fail softly), so paid and
// cancelled accept initiated as a predecessor too.
func CanTransition(from, to Status) bool {
	switch to {
	case StatusAwaitingPayment:
		return from == StatusInitiated
	case StatusPaid, StatusCancelled:
		return from == StatusInitiated || from == StatusAwaitingPayment
	default:
		return false
	}
}

// AllowedFrom lists the legal predecessor states for a transition into to.
// Repos use it as the guard set of a conditional status update.
func AllowedFrom(to Status) []Status {
	switch to {
	case StatusAwaitingPayment:
		return []Status{StatusInitiated}
	case StatusPaid, StatusCancelled:
		return []Status{StatusInitiated, StatusAwaitingPayment}
	default:
		return nil
	}
}

type Order struct {
	ID            uuid.UUID
	UserID        *uuid.UUID // nil for guest checkout
	AddressID     *uuid.UUID
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	Status        Status
	ProcessorRef  string // checkout session id, replaced by payment intent id once known
	Items         []OrderItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem is one product line within an order. The unit price is
// snapshotted at purchase time and never changes afterwards.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string // hydrated on read, not stored on the item row
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// Validate enforces the creation-time invariants: positive total, non-empty
// items, positive quantities, and total == sum of item subtotals.
func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	if !o.Total.IsPositive() {
		return ErrInvalidTotal
	}
	sum := decimal.Zero
	for _, it := range o.Items {
		if it.Quantity <= 0 {
			return errors.New("line item quantity must be positive")
		}
		sum = sum.Add(it.Subtotal)
	}
	if !sum.Equal(o.Total) {
		return ErrTotalMismatch
	}
	return nil
}

// Reference is the short order number shown to customers and embedded in
// notification emails.
func (o *Order) Reference() string {
	s := strings.ReplaceAll(o.ID.String(), "-", "")
	return strings.ToUpper(s[len(s)-8:])
}

// Abandoned reports whether the order sat in its initial state past the
// retention window. Abandoned orders are filtered from listings at read
// time, never actively cancelled.
func (o *Order) Abandoned(window time.Duration, now time.Time) bool {
	return o.Status == StatusInitiated && now.Sub(o.CreatedAt) > window
}
