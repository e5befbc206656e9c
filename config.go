package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"order-intake-service/database"
	aws_pkg "order-intake-service/pkg/aws"
	"order-intake-service/services"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const dbSecretName = "order/DB_CREDENTIALS"

type Config struct {
	Port        string
	Env         string
	ServiceName string

	Database    database.Config
	AutoMigrate bool

	TaxRate               decimal.Decimal
	ShippingFlatAmount    decimal.Decimal
	FreeShippingThreshold *decimal.Decimal

	KafkaBrokers        []string
	OrderEventsTopic    string
	OrderSNSTopicArn    string
	OrderEventsQueueURL string

	AllowedOrigins     string
	RateLimitPerMinute int
	RateLimitBurst     int
	RequestTimeout     time.Duration

	UseSecrets        bool
	CloudWatchEnabled bool
	LogGroupName      string
}

// secretMapReader is satisfied by *aws_pkg.SecretsClient.
type secretMapReader interface {
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

func LoadConfig(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var secrets secretMapReader
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config for secrets: %w", err)
		}
		secrets = aws_pkg.NewSecretsClient(awsCfg)
	}
	return loadConfig(ctx, secrets)
}

func loadConfig(ctx context.Context, secrets secretMapReader) (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8083"),
		Env:         getEnv("APP_ENV", "development"),
		ServiceName: getEnv("SERVICE_NAME", "order-intake-service"),
		Database: database.Config{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Name:     os.Getenv("POSTGRES_DB"),
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),
		},
		OrderEventsTopic:    getEnv("ORDER_EVENTS_TOPIC", "order.events"),
		OrderSNSTopicArn:    os.Getenv("ORDER_SNS_TOPIC_ARN"),
		OrderEventsQueueURL: os.Getenv("ORDER_EVENTS_QUEUE_URL"),
		AllowedOrigins:      getEnv("ALLOWED_ORIGINS", "*"),
		UseSecrets:          os.Getenv("AWS_USE_SECRETS") == "true",
		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		LogGroupName:        getEnv("CLOUDWATCH_LOG_GROUP", "/order-intake/services"),
	}

	var err error
	if cfg.Database.MaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", 20); err != nil {
		return nil, err
	}
	if cfg.Database.MaxIdleConns, err = getEnvInt("DB_MAX_IDLE_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.Database.ConnMaxLifetime, err = getEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour); err != nil {
		return nil, err
	}
	if cfg.AutoMigrate, err = getEnvBool("DB_AUTO_MIGRATE", true); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getEnvInt("RATE_LIMIT_PER_MINUTE", 100); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 50); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getEnvDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	if cfg.TaxRate, err = getEnvDecimal("TAX_RATE", "0"); err != nil {
		return nil, err
	}
	if cfg.ShippingFlatAmount, err = getEnvDecimal("SHIPPING_FLAT_AMOUNT", "0"); err != nil {
		return nil, err
	}
	if v := os.Getenv("FREE_SHIPPING_THRESHOLD"); v != "" {
		threshold, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("FREE_SHIPPING_THRESHOLD: %w", err)
		}
		cfg.FreeShippingThreshold = &threshold
	}
	if cfg.TaxRate.IsNegative() || cfg.ShippingFlatAmount.IsNegative() {
		return nil, fmt.Errorf("TAX_RATE and SHIPPING_FLAT_AMOUNT must not be negative")
	}

	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	if secrets != nil {
		m, err := secrets.GetSecretMap(ctx, dbSecretName)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", dbSecretName, err)
		}
		overrideFromSecret(&cfg.Database, m)
	}

	if cfg.Database.User == "" || cfg.Database.Password == "" || cfg.Database.Name == "" || cfg.Database.Host == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	return cfg, nil
}

func overrideFromSecret(db *database.Config, m map[string]string) {
	set := func(dst *string, key string) {
		if v, ok := m[key]; ok && v != "" {
			*dst = v
		}
	}
	set(&db.User, "POSTGRES_USER")
	set(&db.Password, "POSTGRES_PASSWORD")
	set(&db.Name, "POSTGRES_DB")
	set(&db.Host, "POSTGRES_HOST")
	set(&db.Port, "POSTGRES_PORT")
}

// Pricing returns the flat-rate policy configured by TAX_RATE,
// SHIPPING_FLAT_AMOUNT and FREE_SHIPPING_THRESHOLD.
func (c *Config) Pricing() services.FlatRatePolicy {
	return services.FlatRatePolicy{
		TaxRate:               c.TaxRate,
		ShippingFlat:          c.ShippingFlatAmount,
		FreeShippingThreshold: c.FreeShippingThreshold,
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getEnvDecimal(key, fallback string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, fallback))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
