package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
)

// StatusUpdate carries the processor correlation data written alongside a
// status transition. Empty fields leave the stored values untouched.
type StatusUpdate struct {
	ProcessorRef  string
	PaymentMethod entity.PaymentMethod
}

type OrderRepo interface {
	// Create inserts the order header and all line items atomically.
	Create(ctx context.Context, o *entity.Order) error
	// GetByID returns the hydrated order (items with product names) or
	// nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	// GetByProcessorRef locates an order by its stored checkout-session or
	// payment-intent reference. Returns nil when no order matches.
	GetByProcessorRef(ctx context.Context, ref string) (*entity.Order, error)
	// UpdateStatusIf conditionally transitions id into to when its current
	// status is one of from, reporting whether a row actually moved.
	// Concurrent webhook deliveries for the same order serialize on this
	// row-level conditional update.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from []entity.Status, to entity.Status, upd StatusUpdate) (bool, error)
	// ListByUser returns the user's orders newest-first, excluding orders
	// stuck in the initial state longer than abandonedAfter.
	ListByUser(ctx context.Context, userID uuid.UUID, abandonedAfter time.Duration) ([]entity.Order, error)
}

type AddressRepo interface {
	// FindMatch returns the user's address matching key, or nil.
	FindMatch(ctx context.Context, userID uuid.UUID, key entity.AddressKey) (*entity.Address, error)
	Insert(ctx context.Context, a *entity.Address) error
	Update(ctx context.Context, a *entity.Address) error
}

type ProductRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// FirstActive is the bootstrap fallback when no product id is
	// configured; the storefront sells a single configured SKU.
	FirstActive(ctx context.Context) (*entity.Product, error)
}

type ProfileRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	// Upsert writes the contact fields captured during checkout.
	Upsert(ctx context.Context, p *entity.Profile) error
}

// CheckoutSessionParams describes the hosted payment session requested from
// the external processor.
type CheckoutSessionParams struct {
	OrderID       uuid.UUID
	UserID        string
	CustomerEmail string
	Locale        string
	SuccessURL    string
	CancelURL     string
	MethodTypes   []string
	LineItems     []SessionLineItem
}

type SessionLineItem struct {
	Name        string
	Description string
	ImageURL    string
	Currency    string
	UnitAmount  int64 // minor currency units, from the order's stored price
	Quantity    int64
}

type CheckoutSession struct {
	ID            string
	URL           string
	PaymentIntent string // may be empty until the buyer reaches the session
}

type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutSessionParams) (*CheckoutSession, error)
}

// SignatureVerifier authenticates webhook payloads. Configured reports
// whether a signing secret is present; without one the reconciler falls
// back to trusting the payload, an explicitly weaker mode.
type SignatureVerifier interface {
	Configured() bool
	Verify(payload []byte, sigHeader string) error
}

// EventDedup remembers processor event ids so redelivered events are
// recognized before any business logic runs.
type EventDedup interface {
	// FirstDelivery returns true when eventID has not been seen before.
	FirstDelivery(ctx context.Context, eventID string) (bool, error)
}

type EmailSender interface {
	Send(ctx context.Context, to, subject, html string) error
}
