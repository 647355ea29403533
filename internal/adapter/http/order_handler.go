package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/comeca-ai/leao-pet-vitality/internal/adapter/http/middleware"
	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
	"github.com/comeca-ai/leao-pet-vitality/internal/usecase"
)

type OrderHandler struct {
	orders         usecase.OrderRepo
	abandonedAfter time.Duration
}

func NewOrderHandler(orders usecase.OrderRepo, abandonedAfter time.Duration) *OrderHandler {
	return &OrderHandler{orders: orders, abandonedAfter: abandonedAfter}
}

// List returns the caller's orders newest-first. Orders stuck in the
// initial state past the retention window are excluded, not cancelled.
func (h *OrderHandler) List(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.orders.ListByUser(ctx, userID, h.abandonedAfter)
	if err != nil {
		writeError(c, usecase.Ef(usecase.KindInternal, "list orders", err))
		return
	}

	out := make([]gin.H, 0, len(orders))
	for i := range orders {
		out = append(out, orderJSON(&orders[i]))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

func (h *OrderHandler) Get(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.orders.GetByID(ctx, id)
	if err != nil {
		writeError(c, usecase.Ef(usecase.KindInternal, "load order", err))
		return
	}
	// Orders are scoped to their owner; guests fetch nothing here.
	if order == nil || order.UserID == nil || *order.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	c.JSON(http.StatusOK, orderJSON(order))
}

func orderJSON(o *entity.Order) gin.H {
	items := make([]gin.H, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, gin.H{
			"productId":   it.ProductID,
			"productName": it.ProductName,
			"quantity":    it.Quantity,
			"unitPrice":   it.UnitPrice,
			"subtotal":    it.Subtotal,
		})
	}
	return gin.H{
		"id":            o.ID,
		"reference":     o.Reference(),
		"status":        o.Status,
		"paymentMethod": o.PaymentMethod,
		"total":         o.Total,
		"items":         items,
		"createdAt":     o.CreatedAt,
		"updatedAt":     o.UpdatedAt,
	}
}
