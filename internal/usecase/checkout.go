package usecase

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
	"github.com/comeca-ai/leao-pet-vitality/internal/logging"
)

// minorUnits converts a decimal price to integer minor currency units.
func minorUnits(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// CheckoutConfig is the injected slice of process configuration the
// checkout flow needs; business logic never reads ambient globals.
type CheckoutConfig struct {
	ProductID   uuid.UUID
	Currency    string
	Locale      string
	MethodTypes []string
	SuccessURL  string // keeps the processor's session-id placeholder literal
	CancelURL   string
}

type CustomerInfo struct {
	Name    string
	Email   string
	Phone   string
	Address entity.Address
}

type CheckoutInput struct {
	UserID   *uuid.UUID // nil for guest checkout
	Quantity int
	Customer CustomerInfo
}

type CheckoutResult struct {
	Order       *entity.Order
	SessionID   string
	RedirectURL string
}

// Checkout drives the hosted-payment path: validate stock and customer
// info locally, persist the order, then hand off to the external processor.
type Checkout struct {
	cfg       CheckoutConfig
	orders    OrderRepo
	products  ProductRepo
	profiles  ProfileRepo
	addresses *AddressResolver
	create    *CreateOrder
	gateway   PaymentGateway
	notifier  *Notifier
	log       *slog.Logger
}

func NewCheckout(
	cfg CheckoutConfig,
	orders OrderRepo,
	products ProductRepo,
	profiles ProfileRepo,
	addresses *AddressResolver,
	create *CreateOrder,
	gateway PaymentGateway,
	notifier *Notifier,
) *Checkout {
	return &Checkout{
		cfg:       cfg,
		orders:    orders,
		products:  products,
		profiles:  profiles,
		addresses: addresses,
		create:    create,
		gateway:   gateway,
		notifier:  notifier,
		log:       logging.New("checkout"),
	}
}

// Execute runs the full flow. Validation and stock failures block before
// the processor is ever contacted; a processor failure after the order was
// created leaves it in initiated for a user-initiated retry.
func (c *Checkout) Execute(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if err := ValidateCustomerInfo(&in.Customer); err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return nil, FieldError("quantity", "quantity must be greater than zero")
	}

	product, err := c.products.GetByID(ctx, c.cfg.ProductID)
	if err != nil {
		return nil, Ef(KindInternal, "load product", err)
	}
	if stock := ValidateAvailability(product, in.Quantity); !stock.Available {
		return nil, E(KindStock, stock.Message)
	}

	var addressID *uuid.UUID
	if in.UserID != nil {
		id, err := c.addresses.Resolve(ctx, *in.UserID, in.Customer.Address)
		if err != nil {
			return nil, err
		}
		addressID = &id
		c.syncProfile(ctx, *in.UserID, in.Customer)
	}

	order, err := c.create.Execute(ctx, CreateOrderInput{
		UserID:        in.UserID,
		AddressID:     addressID,
		PaymentMethod: entity.MethodCard,
		Items: []CreateOrderItem{{
			ProductID: product.ID,
			Quantity:  in.Quantity,
			UnitPrice: product.EffectivePrice(),
		}},
	})
	if err != nil {
		return nil, err
	}

	session, err := c.CreateSession(ctx, order, product, in.Customer.Email)
	if err != nil {
		// The order stays in initiated; the customer retries from the UI.
		return nil, err
	}

	c.notifyConfirmation(ctx, order, in.Customer)

	return &CheckoutResult{Order: order, SessionID: session.ID, RedirectURL: session.URL}, nil
}

// notifyConfirmation emails the submitted address once the session exists.
// Best-effort: guests have no stored profile, so the contact comes straight
// from the checkout form, and a send failure never fails the checkout.
func (c *Checkout) notifyConfirmation(ctx context.Context, order *entity.Order, customer CustomerInfo) {
	profile := &entity.Profile{Name: customer.Name, Email: customer.Email}
	if err := c.notifier.SendOrderEmail(ctx, profile, order, EmailConfirmation, ""); err != nil {
		c.log.WarnContext(ctx, "confirmation email failed", "order_id", order.ID, "err", err)
	}
}

// CreateSession requests a hosted payment session for an already-persisted
// order and advances it to awaiting_payment. The status update failing does
// not fail the operation: the session exists and must reach the caller.
func (c *Checkout) CreateSession(ctx context.Context, order *entity.Order, product *entity.Product, buyerEmail string) (*CheckoutSession, error) {
	if len(order.Items) == 0 {
		return nil, E(KindValidation, "order has no line items")
	}

	items := make([]SessionLineItem, 0, len(order.Items))
	for _, it := range order.Items {
		// Display data comes from the live product; the price must come
		// from the order's stored unit price.
		items = append(items, SessionLineItem{
			Name:        product.Name,
			Description: product.Description,
			ImageURL:    product.ImageURL,
			Currency:    c.cfg.Currency,
			UnitAmount:  minorUnits(it.UnitPrice),
			Quantity:    int64(it.Quantity),
		})
	}

	var userID string
	if order.UserID != nil {
		userID = order.UserID.String()
	}

	session, err := c.gateway.CreateCheckoutSession(ctx, CheckoutSessionParams{
		OrderID:       order.ID,
		UserID:        userID,
		CustomerEmail: buyerEmail,
		Locale:        c.cfg.Locale,
		SuccessURL:    c.cfg.SuccessURL,
		CancelURL:     c.cfg.CancelURL,
		MethodTypes:   c.cfg.MethodTypes,
		LineItems:     items,
	})
	if err != nil {
		return nil, err
	}

	ref := session.PaymentIntent
	if ref == "" {
		ref = session.ID
	}
	moved, err := c.orders.UpdateStatusIf(ctx, order.ID,
		entity.AllowedFrom(entity.StatusAwaitingPayment),
		entity.StatusAwaitingPayment,
		StatusUpdate{ProcessorRef: ref},
	)
	if err != nil || !moved {
		c.log.ErrorContext(ctx, "order not advanced after session creation",
			"order_id", order.ID, "session_id", session.ID, "err", err)
	} else {
		order.Status = entity.StatusAwaitingPayment
		order.ProcessorRef = ref
	}

	return session, nil
}

func (c *Checkout) syncProfile(ctx context.Context, userID uuid.UUID, customer CustomerInfo) {
	err := c.profiles.Upsert(ctx, &entity.Profile{
		ID:        userID,
		Name:      customer.Name,
		Email:     customer.Email,
		Phone:     customer.Phone,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		// Best-effort: a stale profile never blocks checkout.
		c.log.WarnContext(ctx, "profile sync failed", "user_id", userID, "err", err)
	}
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateCustomerInfo applies the field-level checks shared by both
// checkout paths.
func ValidateCustomerInfo(c *CustomerInfo) error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return FieldError("name", "name is required")
	case c.Email == "" || !emailRe.MatchString(c.Email):
		return FieldError("email", "a valid email is required")
	case strings.TrimSpace(c.Phone) == "":
		return FieldError("phone", "phone is required")
	}
	return validateAddress(&c.Address)
}
