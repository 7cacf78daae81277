package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr            string
	DatabaseURL     string
	JWTSecret       string
	GuestCustomerID int64
	TaxRate         decimal.Decimal
	StockPolicy     string
	RunMigrations   bool
	KafkaBrokers    string
	KafkaOrderTopic string
}

// Load reads configuration from environment variables. Call godotenv.Load
// beforehand if a .env file should be honoured.
func Load() (Config, error) {
	cfg := Config{
		Addr:            env("POS_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		StockPolicy:     strings.ToLower(env("STOCK_POLICY", "strict")),
		RunMigrations:   envBool("RUN_MIGRATIONS", true),
		KafkaBrokers:    os.Getenv("KAFKA_BROKERS"),
		KafkaOrderTopic: env("KAFKA_ORDER_TOPIC", "pos.orders.placed"),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is not set")
	}

	guest, err := strconv.ParseInt(env("GUEST_CUSTOMER_ID", "1"), 10, 64)
	if err != nil || guest <= 0 {
		return Config{}, fmt.Errorf("invalid GUEST_CUSTOMER_ID %q", os.Getenv("GUEST_CUSTOMER_ID"))
	}
	cfg.GuestCustomerID = guest

	rate, err := decimal.NewFromString(env("TAX_RATE", "0.08"))
	if err != nil || rate.IsNegative() {
		return Config{}, fmt.Errorf("invalid TAX_RATE %q", os.Getenv("TAX_RATE"))
	}
	cfg.TaxRate = rate

	return cfg, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}
