package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		BaseURL  string `koanf:"base_url"`
		LogLevel string `koanf:"log_level"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	Postgres struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"postgres"`

	Redis struct {
		Addr     string        `koanf:"addr"`
		Password string        `koanf:"password"`
		EventTTL time.Duration `koanf:"event_ttl"`
	} `koanf:"redis"`

	Stripe struct {
		APIBase       string   `koanf:"api_base"`
		SecretKey     string   `koanf:"secret_key"`
		WebhookSecret string   `koanf:"webhook_secret"`
		MethodTypes   []string `koanf:"method_types"`
		Locale        string   `koanf:"locale"`
		SuccessPath   string   `koanf:"success_path"`
		CancelPath    string   `koanf:"cancel_path"`
	} `koanf:"stripe"`

	Email struct {
		APIBase string `koanf:"api_base"`
		APIKey  string `koanf:"api_key"`
		From    string `koanf:"from"`
	} `koanf:"email"`

	Store struct {
		ProductID      string        `koanf:"product_id"`
		Currency       string        `koanf:"currency"`
		WhatsAppNumber string        `koanf:"whatsapp_number"`
		AbandonedAfter time.Duration `koanf:"abandoned_after"`
	} `koanf:"store"`

	Security struct {
		JWTSecret string `koanf:"jwt_secret"`
		Issuer    string `koanf:"issuer"`
		Audience  string `koanf:"audience"`
	} `koanf:"security"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env overlay (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix STOREAPI_, nested with __)
	// e.g. STOREAPI_POSTGRES__DSN, STOREAPI_STRIPE__SECRET_KEY
	if err := k.Load(env.Provider("STOREAPI_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "STOREAPI_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fails fast on missing required settings so the process never
// starts with partial functionality.
func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.App.BaseURL == "" {
		return fmt.Errorf("app.base_url required")
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn required")
	}
	if c.Stripe.SecretKey == "" {
		return fmt.Errorf("stripe.secret_key required")
	}
	if c.Email.APIKey == "" {
		return fmt.Errorf("email.api_key required")
	}
	if c.Store.WhatsAppNumber == "" {
		return fmt.Errorf("store.whatsapp_number required")
	}
	return nil
}

// SuccessURL is the processor redirect target. The session id placeholder
// stays literal: the processor substitutes it, not us.
func (c Config) SuccessURL() string {
	return c.App.BaseURL + c.Stripe.SuccessPath
}

func (c Config) CancelURL() string {
	return c.App.BaseURL + c.Stripe.CancelPath
}
