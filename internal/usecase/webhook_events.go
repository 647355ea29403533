package usecase

import (
	"encoding/json"
	"fmt"

	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
)

// Recognized processor event types. Anything else is acknowledged without
// action.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentSucceeded  = "payment_intent.succeeded"
	EventPaymentFailed     = "payment_intent.payment_failed"
)

// eventEnvelope is the outer shape of every processor event. The object
// payload is decoded per event type only after the discriminant is known.
type eventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// SessionObject is the checkout-session payload of a
// checkout.session.completed event.
type SessionObject struct {
	ID                 string   `json:"id"`
	PaymentIntent      string   `json:"payment_intent"`
	PaymentMethodTypes []string `json:"payment_method_types"`
}

// IntentObject is the payment-intent payload of payment_intent.succeeded
// and payment_intent.payment_failed events.
type IntentObject struct {
	ID      string `json:"id"`
	Charges struct {
		Data []struct {
			PaymentMethodDetails struct {
				Card   json.RawMessage `json:"card"`
				Pix    json.RawMessage `json:"pix"`
				Boleto json.RawMessage `json:"boleto"`
			} `json:"payment_method_details"`
		} `json:"data"`
	} `json:"charges"`
}

func decodeEnvelope(body []byte) (*eventEnvelope, error) {
	var env eventEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("event has no type")
	}
	return &env, nil
}

// ResolvePaymentMethod determines the effective payment method for an
// order. An explicit boleto/pix method type on the session takes priority
// over the intent's charge details; card is the default when neither is
// conclusive.
func ResolvePaymentMethod(session *SessionObject, intent *IntentObject) entity.PaymentMethod {
	if session != nil {
		for _, t := range session.PaymentMethodTypes {
			switch t {
			case "boleto":
				return entity.MethodBoleto
			case "pix":
				return entity.MethodPix
			}
		}
	}
	if intent != nil && len(intent.Charges.Data) > 0 {
		details := intent.Charges.Data[0].PaymentMethodDetails
		switch {
		case details.Boleto != nil:
			return entity.MethodBoleto
		case details.Pix != nil:
			return entity.MethodPix
		case details.Card != nil:
			return entity.MethodCard
		}
	}
	return entity.MethodCard
}
