package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wichananm65/ticket-shop-backend/internal/promptpay"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// QR providers.
const (
	QRProviderPNG = "png"
	QRProviderURL = "url"
)

type Config struct {
	Addr               string
	Env                string
	JWTSecret          string
	StorageDriver      string
	RedisURL           string
	DatabaseURL        string
	PromptPayID        string
	PaymentMethodLabel string
	QRProvider         string
	QRSize             int
	QRBaseURL          string
}

// Load reads the configuration from the environment. Callers that want a
// .env file load it first.
func Load() (Config, error) {
	cfg := Config{
		Addr:               getenv("APP_ADDR", ":8080"),
		Env:                getenv("APP_ENV", "development"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		StorageDriver:      strings.ToLower(getenv("STORAGE_DRIVER", DriverMemory)),
		RedisURL:           os.Getenv("REDIS_URL"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		PromptPayID:        os.Getenv("PROMPTPAY_ID"),
		PaymentMethodLabel: getenv("PAYMENT_METHOD_LABEL", "PromptPay"),
		QRProvider:         strings.ToLower(getenv("QR_PROVIDER", QRProviderPNG)),
		QRBaseURL:          getenv("QR_BASE_URL", "https://promptpay.io"),
	}

	size, err := strconv.Atoi(getenv("QR_SIZE", "256"))
	if err != nil || size <= 0 {
		return Config{}, fmt.Errorf("QR_SIZE must be a positive integer, got %q", os.Getenv("QR_SIZE"))
	}
	cfg.QRSize = size

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	if c.PromptPayID == "" {
		errs = append(errs, errors.New("PROMPTPAY_ID is not set"))
	} else if _, _, err := promptpay.NormalizeMerchantID(c.PromptPayID); err != nil {
		errs = append(errs, fmt.Errorf("PROMPTPAY_ID: %w", err))
	}
	switch c.StorageDriver {
	case DriverMemory:
	case DriverRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	switch c.QRProvider {
	case QRProviderPNG, QRProviderURL:
	default:
		errs = append(errs, fmt.Errorf("unknown QR_PROVIDER %q", c.QRProvider))
	}
	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
