package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBUser                 string `env:"DB_USER,required"`
	DBPassword             string `env:"DB_PASSWORD,required"`
	DBHost                 string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string `env:"DB_NAME,required"`
	DBPort                 string `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`
	CredentialsFile   string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	StorageBucket     string `env:"STORAGE_BUCKET"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	MercadoPagoAccessToken     string `env:"MERCADOPAGO_ACCESS_TOKEN"`
	MercadoPagoWebhookSecret   string `env:"MERCADOPAGO_WEBHOOK_SECRET"`
	MercadoPagoNotificationURL string `env:"MERCADOPAGO_NOTIFICATION_URL"`

	FrontendURL           string   `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	AllowedOriginSuffixes []string `env:"ALLOWED_ORIGIN_SUFFIXES" envSeparator:"," envDefault:"vercel.app,lovable.app"`

	AdminPasswordHash   string        `env:"ADMIN_PASSWORD_HASH"`
	CashierPasswordHash string        `env:"CASHIER_PASSWORD_HASH"`
	AdminTokenSecret    string        `env:"ADMIN_TOKEN_SECRET"`
	AdminTokenTTL       time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"8h"`

	PixDisplayTTL  time.Duration `env:"PIX_DISPLAY_TTL" envDefault:"30m"`
	PixProviderTTL time.Duration `env:"PIX_PROVIDER_TTL" envDefault:"60m"`

	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	GeminiImageModel string `env:"GEMINI_IMAGE_MODEL" envDefault:"models/gemini-2.5-flash-image"`
	GeminiTextModel  string `env:"GEMINI_TEXT_MODEL" envDefault:"gemini-2.5-flash"`

	ShippingStandardPrice decimal.Decimal `env:"SHIPPING_STANDARD_PRICE" envDefault:"15.00"`
	ShippingExpressPrice  decimal.Decimal `env:"SHIPPING_EXPRESS_PRICE" envDefault:"29.90"`
}

// Load reads .env when present and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ShippingStandardPrice.IsNegative() {
		return fmt.Errorf("SHIPPING_STANDARD_PRICE must not be negative, got %s", c.ShippingStandardPrice)
	}
	if c.ShippingExpressPrice.IsNegative() {
		return fmt.Errorf("SHIPPING_EXPRESS_PRICE must not be negative, got %s", c.ShippingExpressPrice)
	}
	return nil
}

// ShippingPrices returns the configured price per shipping method.
func (c *Config) ShippingPrices() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"pickup":   decimal.Zero,
		"standard": c.ShippingStandardPrice,
		"express":  c.ShippingExpressPrice,
	}
}
