package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/comeca-ai/leao-pet-vitality/internal/usecase"
)

// ProductHandler serves the storefront's single configured SKU.
type ProductHandler struct {
	products  usecase.ProductRepo
	productID uuid.UUID
}

func NewProductHandler(products usecase.ProductRepo, productID uuid.UUID) *ProductHandler {
	return &ProductHandler{products: products, productID: productID}
}

// Current returns the product being sold plus an availability message for
// an optional ?quantity= query.
func (h *ProductHandler) Current(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	product, err := h.products.GetByID(ctx, h.productID)
	if err != nil {
		writeError(c, usecase.Ef(usecase.KindInternal, "load product", err))
		return
	}

	quantity := 1
	if q := c.Query("quantity"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			quantity = n
		}
	}
	stock := usecase.ValidateAvailability(product, quantity)

	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "stock": gin.H{
			"available": stock.Available, "message": stock.Message,
		}})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          product.ID,
		"name":        product.Name,
		"description": product.Description,
		"imageUrl":    product.ImageURL,
		"price":       product.EffectivePrice(),
		"stock": gin.H{
			"available": stock.Available,
			"message":   stock.Message,
		},
	})
}
