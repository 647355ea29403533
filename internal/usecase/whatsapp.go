package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
	"github.com/comeca-ai/leao-pet-vitality/internal/logging"
)

type WhatsAppResult struct {
	Order     *entity.Order
	Reference string
	DeepLink  string
	Message   string
}

// WhatsAppCheckout is the processor-less fallback path: the order is
// persisted for audit with status whatsapp and a human completes the sale
// out-of-band through the rendered deep link.
type WhatsAppCheckout struct {
	cfg       CheckoutConfig
	number    string // seller contact, digits only with country code
	products  ProductRepo
	addresses *AddressResolver
	create    *CreateOrder
	notifier  *Notifier
	log       *slog.Logger
}

func NewWhatsAppCheckout(cfg CheckoutConfig, number string, products ProductRepo, addresses *AddressResolver, create *CreateOrder, notifier *Notifier) *WhatsAppCheckout {
	return &WhatsAppCheckout{
		cfg:       cfg,
		number:    number,
		products:  products,
		addresses: addresses,
		create:    create,
		notifier:  notifier,
		log:       logging.New("whatsapp"),
	}
}

func (w *WhatsAppCheckout) Execute(ctx context.Context, in CheckoutInput) (*WhatsAppResult, error) {
	if err := ValidateCustomerInfo(&in.Customer); err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return nil, FieldError("quantity", "quantity must be greater than zero")
	}

	product, err := w.products.GetByID(ctx, w.cfg.ProductID)
	if err != nil {
		return nil, Ef(KindInternal, "load product", err)
	}
	if stock := ValidateAvailability(product, in.Quantity); !stock.Available {
		return nil, E(KindStock, stock.Message)
	}

	var addressID *uuid.UUID
	if in.UserID != nil {
		id, err := w.addresses.Resolve(ctx, *in.UserID, in.Customer.Address)
		if err != nil {
			return nil, err
		}
		addressID = &id
	}

	order, err := w.create.Execute(ctx, CreateOrderInput{
		UserID:        in.UserID,
		AddressID:     addressID,
		PaymentMethod: entity.MethodWhatsApp,
		Status:        entity.StatusWhatsApp,
		Items: []CreateOrderItem{{
			ProductID: product.ID,
			Quantity:  in.Quantity,
			UnitPrice: product.EffectivePrice(),
		}},
	})
	if err != nil {
		return nil, err
	}

	// Human-facing reference: time-based is enough, nothing external needs
	// global uniqueness on this path.
	reference := fmt.Sprintf("WA%d", time.Now().UnixMilli()%100_000_000)
	message := buildWhatsAppMessage(reference, product.Name, in.Quantity, order.Total.StringFixed(2), in.Customer)
	link := fmt.Sprintf("https://wa.me/%s?text=%s", w.number, url.QueryEscape(message))

	w.notifyCreated(ctx, order, in.Customer, link)

	w.log.InfoContext(ctx, "whatsapp handoff built", "order_id", order.ID, "reference", reference)
	return &WhatsAppResult{Order: order, Reference: reference, DeepLink: link, Message: message}, nil
}

func (w *WhatsAppCheckout) notifyCreated(ctx context.Context, order *entity.Order, customer CustomerInfo, link string) {
	profile := &entity.Profile{Name: customer.Name, Email: customer.Email}
	if err := w.notifier.SendOrderEmail(ctx, profile, order, EmailWhatsAppCreated, link); err != nil {
		w.log.WarnContext(ctx, "whatsapp email failed", "order_id", order.ID, "err", err)
	}
}

func buildWhatsAppMessage(reference, productName string, quantity int, total string, c CustomerInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛒 *Novo Pedido #%s*\n\n", reference)
	fmt.Fprintf(&b, "📦 *Produto:* %s\n", productName)
	fmt.Fprintf(&b, "📊 *Quantidade:* %d\n", quantity)
	fmt.Fprintf(&b, "💰 *Valor Total:* R$ %s\n\n", strings.ReplaceAll(total, ".", ","))
	fmt.Fprintf(&b, "👤 *Dados do Cliente:*\n")
	fmt.Fprintf(&b, "Nome: %s\nEmail: %s\nTelefone: %s\n\n", c.Name, c.Email, c.Phone)
	fmt.Fprintf(&b, "📍 *Endereço de Entrega:*\n")
	fmt.Fprintf(&b, "%s, %s\n", c.Address.Street, c.Address.Number)
	fmt.Fprintf(&b, "%s - %s\n\n", c.Address.City, c.Address.PostalCode)
	b.WriteString("Gostaria de finalizar este pedido!")
	return b.String()
}
