package payment

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/comeca-ai/leao-pet-vitality/internal/usecase"
)

// StripeClient creates hosted checkout sessions against a Stripe-compatible
// API. Requests are form-encoded per the Stripe wire format.
type StripeClient struct {
	http *resty.Client
}

func NewStripeClient(apiBase, secretKey string) *StripeClient {
	c := resty.New().
		SetBaseURL(apiBase).
		SetAuthToken(secretKey).
		SetHeader("Content-Type", "application/x-www-form-urlencoded")
	return &StripeClient{http: c}
}

var _ usecase.PaymentGateway = (*StripeClient)(nil)

type sessionResponse struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentIntent string `json:"payment_intent"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *StripeClient) CreateCheckoutSession(ctx context.Context, p usecase.CheckoutSessionParams) (*usecase.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	form.Set("customer_email", p.CustomerEmail)
	form.Set("locale", p.Locale)
	form.Set("billing_address_collection", "required")
	for i, t := range p.MethodTypes {
		form.Set(fmt.Sprintf("payment_method_types[%d]", i), t)
	}
	for i, it := range p.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", it.Currency)
		form.Set(prefix+"[price_data][product_data][name]", it.Name)
		if it.Description != "" {
			form.Set(prefix+"[price_data][product_data][description]", it.Description)
		}
		if it.ImageURL != "" {
			form.Set(prefix+"[price_data][product_data][images][0]", it.ImageURL)
		}
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(it.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.FormatInt(it.Quantity, 10))
	}
	// Correlation metadata on the session and on its payment intent, so
	// either object leads back to the order.
	form.Set("metadata[order_id]", p.OrderID.String())
	form.Set("payment_intent_data[metadata][order_id]", p.OrderID.String())
	if p.UserID != "" {
		form.Set("metadata[user_id]", p.UserID)
		form.Set("payment_intent_data[metadata][user_id]", p.UserID)
	}

	var (
		ok   sessionResponse
		fail errorResponse
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(form.Encode()).
		SetResult(&ok).
		SetError(&fail).
		Post("/v1/checkout/sessions")
	if err != nil {
		return nil, usecase.Ef(usecase.KindNetwork, "reach payment processor", err)
	}
	if resp.IsError() {
		msg := fail.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return nil, usecase.E(usecase.KindProcessor, "create checkout session: "+msg)
	}

	return &usecase.CheckoutSession{
		ID:            ok.ID,
		URL:           ok.URL,
		PaymentIntent: ok.PaymentIntent,
	}, nil
}
