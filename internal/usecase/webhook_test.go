package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
)

type webhookFixture struct {
	orders   *mockOrderRepo
	profiles *mockProfileRepo
	verifier *mockVerifier
	dedup    *mockDedup
	sender   *mockSender
	uc       *Webhook
}

func newWebhookFixture() *webhookFixture {
	f := &webhookFixture{
		orders:   new(mockOrderRepo),
		profiles: new(mockProfileRepo),
		verifier: new(mockVerifier),
		dedup:    new(mockDedup),
		sender:   new(mockSender),
	}
	// default: no secret configured, payloads trusted
	f.verifier.On("Configured").Return(false).Maybe()
	f.uc = NewWebhook(f.orders, f.profiles, f.verifier, f.dedup, NewNotifier(f.sender))
	return f
}

func storedOrder(status entity.Status, ref string) *entity.Order {
	userID := uuid.New()
	price := decimal.RequireFromString("49.90")
	id := uuid.New()
	return &entity.Order{
		ID:           id,
		UserID:       &userID,
		Status:       status,
		ProcessorRef: ref,
		Total:        price.Mul(decimal.NewFromInt(2)),
		Items: []entity.OrderItem{{
			ID:        uuid.New(),
			OrderID:   id,
			ProductID: uuid.New(),
			Quantity:  2,
			UnitPrice: price,
			Subtotal:  price.Mul(decimal.NewFromInt(2)),
		}},
	}
}

func eventBody(id, typ, object string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"type":%q,"data":{"object":%s}}`, id, typ, object))
}

func TestHandleEventRejectsBadSignature(t *testing.T) {
	f := newWebhookFixture()
	f.verifier.ExpectedCalls = nil
	f.verifier.On("Configured").Return(true)
	f.verifier.On("Verify", mock.Anything, "t=1,v1=bad").Return(errors.New("mismatch"))

	err := f.uc.HandleEvent(context.Background(), eventBody("evt_1", EventPaymentSucceeded, `{"id":"pi_1"}`), "t=1,v1=bad")
	assert.ErrorIs(t, err, ErrBadSignature)
	f.orders.AssertNotCalled(t, "GetByProcessorRef", mock.Anything, mock.Anything)
}

func TestHandleEventAcksUndecodablePayload(t *testing.T) {
	f := newWebhookFixture()
	err := f.uc.HandleEvent(context.Background(), []byte(`{not json`), "")
	assert.NoError(t, err)
}

func TestHandleEventIgnoresDuplicateDelivery(t *testing.T) {
	f := newWebhookFixture()
	f.dedup.On("FirstDelivery", mock.Anything, "evt_dup").Return(false, nil)

	err := f.uc.HandleEvent(context.Background(), eventBody("evt_dup", EventPaymentSucceeded, `{"id":"pi_1"}`), "")
	require.NoError(t, err)
	f.orders.AssertNotCalled(t, "GetByProcessorRef", mock.Anything, mock.Anything)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleEventToleratesDedupOutage(t *testing.T) {
	// Redis being down must not lose the event: the conditional status
	// update still guards against double application.
	f := newWebhookFixture()
	f.dedup.On("FirstDelivery", mock.Anything, "evt_x").Return(false, errors.New("redis down"))
	f.orders.On("GetByProcessorRef", mock.Anything, "pi_x").Return(nil, nil)

	err := f.uc.HandleEvent(context.Background(), eventBody("evt_x", EventPaymentSucceeded, `{"id":"pi_x"}`), "")
	require.NoError(t, err)
	f.orders.AssertCalled(t, "GetByProcessorRef", mock.Anything, "pi_x")
}

func TestHandleEventAcksUnknownType(t *testing.T) {
	f := newWebhookFixture()
	f.dedup.On("FirstDelivery", mock.Anything, mock.Anything).Return(true, nil)

	err := f.uc.HandleEvent(context.Background(), eventBody("evt_2", "charge.refunded", `{}`), "")
	assert.NoError(t, err)
	f.orders.AssertNotCalled(t, "GetByProcessorRef", mock.Anything, mock.Anything)
}

func TestSessionCompletedAdvancesOrder(t *testing.T) {
	f := newWebhookFixture()
	order := storedOrder(entity.StatusInitiated, "cs_1")

	f.dedup.On("FirstDelivery", mock.Anything, "evt_3").Return(true, nil)
	f.orders.On("GetByProcessorRef", mock.Anything, "cs_1").Return(order, nil)
	f.orders.On("UpdateStatusIf", mock.Anything, order.ID,
		[]entity.Status{entity.StatusInitiated, entity.StatusAwaitingPayment}, entity.StatusAwaitingPayment,
		StatusUpdate{ProcessorRef: "pi_1", PaymentMethod: entity.MethodCard}).Return(true, nil)

	body := eventBody("evt_3", EventCheckoutCompleted, `{"id":"cs_1","payment_intent":"pi_1","payment_method_types":["card"]}`)
	require.NoError(t, f.uc.HandleEvent(context.Background(), body, ""))
	f.orders.AssertExpectations(t)
	// awaiting_payment never triggers an email
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionCompletedBoletoMethod(t *testing.T) {
	f := newWebhookFixture()
	order := storedOrder(entity.StatusInitiated, "cs_b")

	f.dedup.On("FirstDelivery", mock.Anything, mock.Anything).Return(true, nil)
	f.orders.On("GetByProcessorRef", mock.Anything, "cs_b").Return(order, nil)
	f.orders.On("UpdateStatusIf", mock.Anything, order.ID, mock.Anything, entity.StatusAwaitingPayment,
		StatusUpdate{ProcessorRef: "pi_b", PaymentMethod: entity.MethodBoleto}).Return(true, nil)

	body := eventBody("evt_b", EventCheckoutCompleted, `{"id":"cs_b","payment_intent":"pi_b","payment_method_types":["boleto"]}`)
	require.NoError(t, f.uc.HandleEvent(context.Background(), body, ""))
	f.orders.AssertExpectations(t)
}

func TestSessionCompletedFallsBackToIntentLookup(t *testing.T) {
	// the completed event may arrive after the ref was already rewritten
	// to the payment intent id
	f := newWebhookFixture()
	order := storedOrder(entity.StatusAwaitingPayment, "pi_9")

	f.dedup.On("FirstDelivery", mock.Anything, mock.Anything).Return(true, nil)
	f.orders.On("GetByProcessorRef", mock.Anything, "cs_9").Return(nil, nil)
	f.orders.On("GetByProcessorRef", mock.Anything, "pi_9").Return(order, nil)
	f.orders.On("UpdateStatusIf", mock.Anything, order.ID, mock.Anything, entity.StatusAwaitingPayment, mock.Anything).
		Return(false, nil)

	body := eventBody("evt_9", EventCheckoutCompleted, `{"id":"cs_9","payment_intent":"pi_9"}`)
	require.NoError(t, f.uc.HandleEvent(context.Background(), body, ""))
	f.orders.AssertExpectations(t)
}

func TestPaymentSucceededMarksPaidAndNotifies(t *testing.T) {
	f := newWebhookFixture()
	order := storedOrder(entity.StatusAwaitingPayment, "pi_1")

	f.dedup.On("FirstDelivery", mock.Anything, "evt_4").Return(true, nil)
	f.orders.On("GetByProcessorRef", mock.Anything, "pi_1").Return(order, nil)
	f.orders.On("UpdateStatusIf", mock.Anything, order.ID,
		[]entity.Status{entity.StatusInitiated, entity.StatusAwaitingPayment}, entity.StatusPaid,
		mock.Anything).Return(true, nil)
	f.profiles.On("Get", mock.Anything, *order.UserID).
		Return(&entity.Profile{ID: *order.UserID, Name: "Ana", Email: "ana@example.com"}, nil)
	f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.sender.On("Send", mock.Anything, "ana@example.com",
		mock.MatchedBy(func(subject string) bool { return len(subject) > 0 }),
		mock.Anything).Return(nil)

	body := eventBody("evt_4", EventPaymentSucceeded, `{"id":"pi_1"}`)
	require.NoError(t, f.uc.HandleEvent(context.Background(), body, ""))
	f.sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestPaymentSucceededTwiceSendsOneEmail(t *testing.T) {
	// dedup misses both deliveries (distinct event ids); the conditional
	// update still makes the second application a no-op
	f := newWebhookFixture()
	order := storedOrder(entity.StatusAwaitingPayment, "pi_2")

	f.dedup.On("FirstDelivery", mock.Anything, mock.Anything).Return(true, nil)
	f.orders.On("GetByProcessorRef", mock.Anything, "pi_2").Return(order, nil)
	f.orders.On("UpdateStatusIf", mock.Anything, order.ID, mock.Anything, entity.StatusPaid, mock.Anything).
		Return(true, nil).Once()
	f.orders.On("UpdateStatusIf", mock.Anything, order.ID, mock.Anything, entity.StatusPaid, mock.Anything).
		Return(false, nil)
	f.profiles.On("Get", mock.Anything, *order.UserID).
		Return(&entity.Profile{ID: *order.UserID, Name: "Ana", Email: "ana@example.com"}, nil)
	f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	body1 := eventBody("evt_5a", EventPaymentSucceeded, `{"id":"pi_2"}`)
	body2 := eventBody("evt_5b", EventPaymentSucceeded, `{"id":"pi_2"}`)
	require.NoError(t, f.uc.HandleEvent(context.Background(), body1, ""))
	require.NoError(t, f.uc.HandleEvent(context.Background(), body2, ""))

	f.sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestPaymentFailedCancelsOrder(t *testing.T) {
	f := newWebhookFixture()
	order := storedOrder(entity.StatusAwaitingPayment, "pi_f")

	f.dedup.On("FirstDelivery", mock.Anything, mock.Anything).Return(true, nil)
	f.orders.On("GetByProcessorRef", mock.Anything, "pi_f").Return(order, nil)
	f.orders.On("UpdateStatusIf", mock.Anything, order.ID,
		[]entity.Status{entity.StatusInitiated, entity.StatusAwaitingPayment}, entity.StatusCancelled,
		mock.Anything).Return(true, nil)
	f.profiles.On("Get", mock.Anything, *order.UserID).
		Return(&entity.Profile{ID: *order.UserID, Name: "Ana", Email: "ana@example.com"}, nil)
	f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.sender.On("Send", mock.Anything, "ana@example.com", mock.Anything, mock.Anything).Return(nil)

	body := eventBody("evt_f", EventPaymentFailed, `{"id":"pi_f"}`)
	require.NoError(t, f.uc.HandleEvent(context.Background(), body, ""))
	f.orders.AssertExpectations(t)
}

func TestPaymentFailedKeepsStoredMethod(t *testing.T) {
	// A boleto order that fails must stay boleto in the store: the
	// cancel transition writes an empty update so the repository keeps
	// the method recorded at session completion.
	f := newWebhookFixture()
	order := storedOrder(entity.StatusAwaitingPayment, "pi_b")
	order.PaymentMethod = entity.MethodBoleto

	f.dedup.On("FirstDelivery", mock.Anything, mock.Anything).Return(true, nil)
	f.orders.On("GetByProcessorRef", mock.Anything, "pi_b").Return(order, nil)
	f.orders.On("UpdateStatusIf", mock.Anything, order.ID,
		[]entity.Status{entity.StatusInitiated, entity.StatusAwaitingPayment}, entity.StatusCancelled,
		StatusUpdate{}).Return(true, nil)
	f.profiles.On("Get", mock.Anything, *order.UserID).
		Return(&entity.Profile{ID: *order.UserID, Name: "Ana", Email: "ana@example.com"}, nil)
	f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.sender.On("Send", mock.Anything, "ana@example.com", mock.Anything, mock.Anything).Return(nil)

	body := eventBody("evt_b", EventPaymentFailed, `{"id":"pi_b"}`)
	require.NoError(t, f.uc.HandleEvent(context.Background(), body, ""))
	f.orders.AssertExpectations(t)
}

func TestFailedAfterPaidIsNoOp(t *testing.T) {
	// out-of-order delivery against a terminal order: the guard set
	// excludes paid, so nothing moves and no email goes out
	f := newWebhookFixture()
	order := storedOrder(entity.StatusPaid, "pi_t")

	f.dedup.On("FirstDelivery", mock.Anything, mock.Anything).Return(true, nil)
	f.orders.On("GetByProcessorRef", mock.Anything, "pi_t").Return(order, nil)
	f.orders.On("UpdateStatusIf", mock.Anything, order.ID, mock.Anything, entity.StatusCancelled, mock.Anything).
		Return(false, nil)

	body := eventBody("evt_t", EventPaymentFailed, `{"id":"pi_t"}`)
	require.NoError(t, f.uc.HandleEvent(context.Background(), body, ""))
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.profiles.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestUnknownOrderIsAcked(t *testing.T) {
	f := newWebhookFixture()
	f.dedup.On("FirstDelivery", mock.Anything, mock.Anything).Return(true, nil)
	f.orders.On("GetByProcessorRef", mock.Anything, "pi_missing").Return(nil, nil)

	body := eventBody("evt_m", EventPaymentSucceeded, `{"id":"pi_missing"}`)
	assert.NoError(t, f.uc.HandleEvent(context.Background(), body, ""))
}

func TestRepoErrorPropagatesForRetry(t *testing.T) {
	f := newWebhookFixture()
	f.dedup.On("FirstDelivery", mock.Anything, mock.Anything).Return(true, nil)
	f.orders.On("GetByProcessorRef", mock.Anything, "pi_err").Return(nil, errors.New("db down"))

	body := eventBody("evt_e", EventPaymentSucceeded, `{"id":"pi_err"}`)
	err := f.uc.HandleEvent(context.Background(), body, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBadSignature)
}

func TestGuestOrderSkipsNotification(t *testing.T) {
	f := newWebhookFixture()
	order := storedOrder(entity.StatusAwaitingPayment, "pi_g")
	order.UserID = nil

	f.dedup.On("FirstDelivery", mock.Anything, mock.Anything).Return(true, nil)
	f.orders.On("GetByProcessorRef", mock.Anything, "pi_g").Return(order, nil)
	f.orders.On("UpdateStatusIf", mock.Anything, order.ID, mock.Anything, entity.StatusPaid, mock.Anything).
		Return(true, nil)

	body := eventBody("evt_g", EventPaymentSucceeded, `{"id":"pi_g"}`)
	require.NoError(t, f.uc.HandleEvent(context.Background(), body, ""))
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEmailFailureDoesNotFailEvent(t *testing.T) {
	f := newWebhookFixture()
	order := storedOrder(entity.StatusAwaitingPayment, "pi_e")

	f.dedup.On("FirstDelivery", mock.Anything, mock.Anything).Return(true, nil)
	f.orders.On("GetByProcessorRef", mock.Anything, "pi_e").Return(order, nil)
	f.orders.On("UpdateStatusIf", mock.Anything, order.ID, mock.Anything, entity.StatusPaid, mock.Anything).
		Return(true, nil)
	f.profiles.On("Get", mock.Anything, *order.UserID).
		Return(&entity.Profile{ID: *order.UserID, Name: "Ana", Email: "ana@example.com"}, nil)
	f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("email provider down"))

	body := eventBody("evt_e2", EventPaymentSucceeded, `{"id":"pi_e"}`)
	assert.NoError(t, f.uc.HandleEvent(context.Background(), body, ""))
}

func TestResolvePaymentMethod(t *testing.T) {
	boletoSession := &SessionObject{PaymentMethodTypes: []string{"card", "boleto"}}
	assert.Equal(t, entity.MethodBoleto, ResolvePaymentMethod(boletoSession, nil))

	pixSession := &SessionObject{PaymentMethodTypes: []string{"pix"}}
	assert.Equal(t, entity.MethodPix, ResolvePaymentMethod(pixSession, nil))

	cardSession := &SessionObject{PaymentMethodTypes: []string{"card"}}
	assert.Equal(t, entity.MethodCard, ResolvePaymentMethod(cardSession, nil))

	var pixIntent IntentObject
	require.NoError(t, json.Unmarshal([]byte(`{"id":"pi_1","charges":{"data":[{"payment_method_details":{"pix":{}}}]}}`), &pixIntent))
	assert.Equal(t, entity.MethodPix, ResolvePaymentMethod(nil, &pixIntent))

	var cardIntent IntentObject
	require.NoError(t, json.Unmarshal([]byte(`{"id":"pi_2","charges":{"data":[{"payment_method_details":{"card":{"brand":"visa"}}}]}}`), &cardIntent))
	assert.Equal(t, entity.MethodCard, ResolvePaymentMethod(nil, &cardIntent))

	// session wins over intent details
	var boletoIntent IntentObject
	require.NoError(t, json.Unmarshal([]byte(`{"id":"pi_3","charges":{"data":[{"payment_method_details":{"card":{}}}]}}`), &boletoIntent))
	assert.Equal(t, entity.MethodBoleto, ResolvePaymentMethod(boletoSession, &boletoIntent))

	// nothing known defaults to card
	assert.Equal(t, entity.MethodCard, ResolvePaymentMethod(nil, nil))
	assert.Equal(t, entity.MethodCard, ResolvePaymentMethod(nil, &IntentObject{}))
}
