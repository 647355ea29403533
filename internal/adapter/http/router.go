package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/comeca-ai/leao-pet-vitality/internal/adapter/http/middleware"
	"github.com/comeca-ai/leao-pet-vitality/internal/logging"
)

func NewRouter(
	ch *CheckoutHandler,
	wh *WebhookHandler,
	oh *OrderHandler,
	ph *ProfileHandler,
	prh *ProductHandler,
	authz *middleware.Authz,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())
	r.Use(middleware.Logging(logging.New("http")))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/products/current", prh.Current)

		// checkout works for guests and authenticated users alike
		v1.POST("/checkout", authz.OptionalUser(), ch.Checkout)
		v1.POST("/checkout/whatsapp", authz.OptionalUser(), ch.WhatsApp)

		// the processor authenticates with its signature, not a bearer token
		v1.POST("/webhooks/payment", wh.HandleEvent)

		v1.GET("/orders", authz.RequireUser(), oh.List)
		v1.GET("/orders/:id", authz.RequireUser(), oh.Get)
		v1.GET("/profile", authz.RequireUser(), ph.Get)
		v1.PUT("/profile", authz.RequireUser(), ph.Update)
	}

	return r
}
