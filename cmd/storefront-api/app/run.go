package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/comeca-ai/leao-pet-vitality/configs"
	"github.com/comeca-ai/leao-pet-vitality/internal/adapter/cache"
	"github.com/comeca-ai/leao-pet-vitality/internal/adapter/email"
	apihttp "github.com/comeca-ai/leao-pet-vitality/internal/adapter/http"
	"github.com/comeca-ai/leao-pet-vitality/internal/adapter/http/middleware"
	"github.com/comeca-ai/leao-pet-vitality/internal/adapter/payment"
	"github.com/comeca-ai/leao-pet-vitality/internal/adapter/repo"
	"github.com/comeca-ai/leao-pet-vitality/internal/logging"
	"github.com/comeca-ai/leao-pet-vitality/internal/security"
	"github.com/comeca-ai/leao-pet-vitality/internal/usecase"
)

type App struct {
	Router *gin.Engine
	cfg    configs.Config
}

// Run serves until the listener fails, honoring the configured timeouts.
func (a *App) Run() error {
	srv := &http.Server{
		Addr:         a.cfg.App.HTTPAddr,
		Handler:      a.Router,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}
	return srv.ListenAndServe()
}

const webhookTolerance = 5 * time.Minute

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	log := logging.Init(cfg.App.Name, "./logs/app.log", cfg.App.LogLevel)

	// database
	db, err := sql.Open("pgx", cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	// redis (webhook replay guard)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	// adapters
	orders := repo.NewPgOrderRepo(db)
	addresses := repo.NewPgAddressRepo(db)
	products := repo.NewPgProductRepo(db)
	profiles := repo.NewPgProfileRepo(db)

	productID, err := resolveProductID(ctx, cfg, products)
	if err != nil {
		return nil, nil, err
	}
	dedup := cache.NewRedisEventDedup(rdb, cfg.Redis.EventTTL)
	gateway := payment.NewStripeClient(cfg.Stripe.APIBase, cfg.Stripe.SecretKey)
	sender := email.NewResendClient(cfg.Email.APIBase, cfg.Email.APIKey, cfg.Email.From)
	verifier := security.NewWebhookVerifier(cfg.Stripe.WebhookSecret, webhookTolerance)
	if !verifier.Configured() {
		log.Warn("stripe.webhook_secret not set, webhook payloads will be trusted unverified")
	}

	// usecases
	checkoutCfg := usecase.CheckoutConfig{
		ProductID:   productID,
		Currency:    cfg.Store.Currency,
		Locale:      cfg.Stripe.Locale,
		MethodTypes: cfg.Stripe.MethodTypes,
		SuccessURL:  cfg.SuccessURL(),
		CancelURL:   cfg.CancelURL(),
	}
	notifier := usecase.NewNotifier(sender)
	resolver := usecase.NewAddressResolver(addresses)
	createOrder := usecase.NewCreateOrder(orders)
	checkout := usecase.NewCheckout(checkoutCfg, orders, products, profiles, resolver, createOrder, gateway, notifier)
	whatsapp := usecase.NewWhatsAppCheckout(checkoutCfg, cfg.Store.WhatsAppNumber, products, resolver, createOrder, notifier)
	webhook := usecase.NewWebhook(orders, profiles, verifier, dedup, notifier)

	// handlers + router
	authz := middleware.NewAuthz(cfg)
	router := apihttp.NewRouter(
		apihttp.NewCheckoutHandler(checkout, whatsapp),
		apihttp.NewWebhookHandler(webhook),
		apihttp.NewOrderHandler(orders, cfg.Store.AbandonedAfter),
		apihttp.NewProfileHandler(profiles),
		apihttp.NewProductHandler(products, productID),
		authz,
	)

	cleanup := func() {
		_ = db.Close()
		_ = rdb.Close()
	}

	log.Info("storefront-api initialized", "product_id", productID)
	return &App{Router: router, cfg: cfg}, cleanup, nil
}

// resolveProductID returns the configured SKU, falling back to the first
// active product when store.product_id is unset.
func resolveProductID(ctx context.Context, cfg configs.Config, products usecase.ProductRepo) (uuid.UUID, error) {
	if cfg.Store.ProductID != "" {
		id, err := uuid.Parse(cfg.Store.ProductID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("store.product_id is not a uuid: %w", err)
		}
		return id, nil
	}
	p, err := products.FirstActive(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve active product: %w", err)
	}
	if p == nil {
		return uuid.Nil, fmt.Errorf("store.product_id unset and no active product found")
	}
	return p.ID, nil
}
