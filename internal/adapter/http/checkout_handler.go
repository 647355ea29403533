package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comeca-ai/leao-pet-vitality/internal/adapter/http/middleware"
	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
	"github.com/comeca-ai/leao-pet-vitality/internal/usecase"
)

type CheckoutHandler struct {
	checkout *usecase.Checkout
	whatsapp *usecase.WhatsAppCheckout
}

func NewCheckoutHandler(checkout *usecase.Checkout, whatsapp *usecase.WhatsAppCheckout) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, whatsapp: whatsapp}
}

type addressReq struct {
	Street       string `json:"street" binding:"required"`
	Number       string `json:"number" binding:"required"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	PostalCode   string `json:"postalCode" binding:"required"`
}

type customerReq struct {
	Name    string     `json:"name" binding:"required"`
	Email   string     `json:"email" binding:"required"`
	Phone   string     `json:"phone" binding:"required"`
	Address addressReq `json:"address" binding:"required"`
}

type checkoutReq struct {
	Quantity int         `json:"quantity" binding:"required,gt=0"`
	Customer customerReq `json:"customer" binding:"required"`
}

func (r checkoutReq) toInput(c *gin.Context) usecase.CheckoutInput {
	in := usecase.CheckoutInput{
		Quantity: r.Quantity,
		Customer: usecase.CustomerInfo{
			Name:  r.Customer.Name,
			Email: r.Customer.Email,
			Phone: r.Customer.Phone,
			Address: entity.Address{
				Street:       r.Customer.Address.Street,
				Number:       r.Customer.Address.Number,
				Complement:   r.Customer.Address.Complement,
				Neighborhood: r.Customer.Address.Neighborhood,
				City:         r.Customer.Address.City,
				State:        r.Customer.Address.State,
				PostalCode:   r.Customer.Address.PostalCode,
				Phone:        r.Customer.Phone,
			},
		},
	}
	if id, ok := middleware.UserID(c); ok {
		uid := id
		in.UserID = &uid
	}
	return in
}

// Checkout drives the hosted-payment path and returns the processor
// redirect URL.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "validation", "message": "malformed request body"}})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	out, err := h.checkout.Execute(ctx, req.toInput(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orderId":     out.Order.ID,
		"status":      out.Order.Status,
		"total":       out.Order.Total,
		"sessionId":   out.SessionID,
		"redirectUrl": out.RedirectURL,
	})
}

// WhatsApp drives the processor-less fallback path and returns the deep
// link the client opens.
func (h *CheckoutHandler) WhatsApp(c *gin.Context) {
	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "validation", "message": "malformed request body"}})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	out, err := h.whatsapp.Execute(ctx, req.toInput(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orderId":        out.Order.ID,
		"orderReference": out.Reference,
		"whatsappUrl":    out.DeepLink,
		"message":        out.Message,
	})
}
