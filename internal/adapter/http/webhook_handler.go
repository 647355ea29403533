package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comeca-ai/leao-pet-vitality/internal/adapter/http/middleware"
	"github.com/comeca-ai/leao-pet-vitality/internal/logging"
	"github.com/comeca-ai/leao-pet-vitality/internal/usecase"
)

type WebhookHandler struct {
	webhook *usecase.Webhook
}

func NewWebhookHandler(webhook *usecase.Webhook) *WebhookHandler {
	return &WebhookHandler{webhook: webhook}
}

// HandleEvent receives processor payment-lifecycle events. 200 means
// processed or intentionally ignored; 400 stops redelivery of an
// unauthenticated event; 500 makes the processor retry.
func (h *WebhookHandler) HandleEvent(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	err = h.webhook.HandleEvent(c.Request.Context(), body, c.GetHeader("Stripe-Signature"))
	switch {
	case errors.Is(err, usecase.ErrBadSignature):
		middleware.WebhookEvents.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
	case err != nil:
		middleware.WebhookEvents.WithLabelValues("error").Inc()
		logging.From(c).Error("webhook processing failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		middleware.WebhookEvents.WithLabelValues("accepted").Inc()
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
