package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
	"github.com/comeca-ai/leao-pet-vitality/internal/logging"
)

// ErrBadSignature rejects an event whose authenticity could not be
// established. It is the only failure the processor should not retry.
var ErrBadSignature = errors.New("webhook signature verification failed")

// Webhook reconciles asynchronous payment-lifecycle events into order
// status transitions. Handlers are idempotent: duplicated, out-of-order,
// and post-terminal deliveries all degrade to acknowledged no-ops.
type Webhook struct {
	orders   OrderRepo
	profiles ProfileRepo
	verifier SignatureVerifier
	dedup    EventDedup
	notifier *Notifier
	log      *slog.Logger
}

func NewWebhook(orders OrderRepo, profiles ProfileRepo, verifier SignatureVerifier, dedup EventDedup, notifier *Notifier) *Webhook {
	return &Webhook{
		orders:   orders,
		profiles: profiles,
		verifier: verifier,
		dedup:    dedup,
		notifier: notifier,
		log:      logging.New("webhook"),
	}
}

// HandleEvent authenticates and applies one delivery. A nil return means
// the event was processed or intentionally ignored and must be acked with
// 200 so the processor stops retrying; ErrBadSignature maps to 400, any
// other error to 500 so the processor retries.
func (w *Webhook) HandleEvent(ctx context.Context, body []byte, sigHeader string) error {
	if w.verifier.Configured() {
		if err := w.verifier.Verify(body, sigHeader); err != nil {
			w.log.WarnContext(ctx, "signature rejected", "err", err)
			return ErrBadSignature
		}
	} else {
		w.log.WarnContext(ctx, "no webhook secret configured, trusting payload")
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		// Authenticated but unparseable: acknowledge, a retry cannot fix it.
		w.log.ErrorContext(ctx, "undecodable event", "err", err)
		return nil
	}

	if env.ID != "" {
		first, err := w.dedup.FirstDelivery(ctx, env.ID)
		if err != nil {
			// The conditional status update still guards correctness.
			w.log.WarnContext(ctx, "event dedup unavailable", "event_id", env.ID, "err", err)
		} else if !first {
			w.log.InfoContext(ctx, "duplicate event ignored", "event_id", env.ID, "type", env.Type)
			return nil
		}
	}

	w.log.InfoContext(ctx, "processing event", "event_id", env.ID, "type", env.Type)

	switch env.Type {
	case EventCheckoutCompleted:
		return w.handleSessionCompleted(ctx, env)
	case EventPaymentSucceeded:
		return w.handleIntentFinal(ctx, env, entity.StatusPaid, EmailPaymentSuccess)
	case EventPaymentFailed:
		return w.handleIntentFinal(ctx, env, entity.StatusCancelled, EmailPaymentFailed)
	default:
		w.log.InfoContext(ctx, "unhandled event type", "type", env.Type)
		return nil
	}
}

func (w *Webhook) handleSessionCompleted(ctx context.Context, env *eventEnvelope) error {
	var session SessionObject
	if err := json.Unmarshal(env.Data.Object, &session); err != nil {
		w.log.ErrorContext(ctx, "undecodable session object", "event_id", env.ID, "err", err)
		return nil
	}

	order, err := w.findOrder(ctx, session.ID, session.PaymentIntent)
	if err != nil {
		return err
	}
	if order == nil {
		w.log.InfoContext(ctx, "no order for session", "session_id", session.ID, "payment_intent", session.PaymentIntent)
		return nil
	}

	ref := session.PaymentIntent
	if ref == "" {
		ref = session.ID
	}
	// Idempotent set rather than a strict transition: checkout may already
	// have advanced the order, but the stored reference must still be
	// rewritten to the payment intent id so the final intent events match.
	moved, err := w.orders.UpdateStatusIf(ctx, order.ID,
		[]entity.Status{entity.StatusInitiated, entity.StatusAwaitingPayment},
		entity.StatusAwaitingPayment,
		StatusUpdate{ProcessorRef: ref, PaymentMethod: ResolvePaymentMethod(&session, nil)},
	)
	if err != nil {
		return Ef(KindInternal, "advance order to awaiting_payment", err)
	}
	if !moved {
		w.log.InfoContext(ctx, "session completed was a no-op", "order_id", order.ID, "status", order.Status)
	}
	return nil
}

func (w *Webhook) handleIntentFinal(ctx context.Context, env *eventEnvelope, to entity.Status, emailType EmailType) error {
	var intent IntentObject
	if err := json.Unmarshal(env.Data.Object, &intent); err != nil {
		w.log.ErrorContext(ctx, "undecodable intent object", "event_id", env.ID, "err", err)
		return nil
	}

	order, err := w.findOrder(ctx, intent.ID, "")
	if err != nil {
		return err
	}
	if order == nil {
		w.log.InfoContext(ctx, "no order for payment intent", "payment_intent", intent.ID)
		return nil
	}

	// Only a successful payment refines the stored method; a failure keeps
	// whatever session-completion recorded (boleto/pix must not become card).
	var upd StatusUpdate
	if to == entity.StatusPaid {
		upd.PaymentMethod = ResolvePaymentMethod(nil, &intent)
	}
	moved, err := w.orders.UpdateStatusIf(ctx, order.ID, entity.AllowedFrom(to), to, upd)
	if err != nil {
		return Ef(KindInternal, "apply terminal transition", err)
	}
	if !moved {
		// Already terminal or duplicate delivery: no side effects.
		w.log.InfoContext(ctx, "terminal transition was a no-op", "order_id", order.ID, "to", to)
		return nil
	}

	w.log.InfoContext(ctx, "order transitioned", "order_id", order.ID, "to", to)
	w.notify(ctx, order, emailType)
	return nil
}

// findOrder locates the order by the primary processor reference, falling
// back to the secondary one when set.
func (w *Webhook) findOrder(ctx context.Context, ref, fallback string) (*entity.Order, error) {
	order, err := w.orders.GetByProcessorRef(ctx, ref)
	if err != nil {
		return nil, Ef(KindInternal, "look up order by processor ref", err)
	}
	if order == nil && fallback != "" {
		order, err = w.orders.GetByProcessorRef(ctx, fallback)
		if err != nil {
			return nil, Ef(KindInternal, "look up order by fallback ref", err)
		}
	}
	return order, nil
}

// notify sends the transactional email for a transition. Best-effort:
// failure is logged, never propagated, and never rolls back the transition.
func (w *Webhook) notify(ctx context.Context, order *entity.Order, emailType EmailType) {
	if order.UserID == nil {
		return // guest order, no stored contact to notify
	}
	profile, err := w.profiles.Get(ctx, *order.UserID)
	if err != nil || profile == nil {
		w.log.WarnContext(ctx, "no profile for notification", "order_id", order.ID, "err", err)
		return
	}

	hydrated, err := w.orders.GetByID(ctx, order.ID)
	if err != nil || hydrated == nil {
		w.log.WarnContext(ctx, "could not hydrate order for notification", "order_id", order.ID, "err", err)
		return
	}

	if err := w.notifier.SendOrderEmail(ctx, profile, hydrated, emailType, ""); err != nil {
		w.log.WarnContext(ctx, "notification failed", "order_id", order.ID, "type", emailType, "err", err)
	}
}
