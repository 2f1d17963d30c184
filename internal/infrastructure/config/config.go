package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config carries the environment settings shared by the API and worker
// processes.
type Config struct {
	Port        string
	DatabaseURL string
	RabbitMQURL string
	RedisAddr   string
	CronSecret  string

	ShopifyAPIVersion string
	ShopifyAPISecret  string

	RedactCustomerPII bool
}

// Load reads a .env file if present and resolves the configuration from the
// environment. Missing required variables produce an error naming the
// variable.
func Load() (Config, error) {
	godotenv.Load()

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RabbitMQURL:       os.Getenv("RABBITMQ_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		CronSecret:        os.Getenv("CRON_SECRET"),
		ShopifyAPIVersion: getEnv("SHOPIFY_API_VERSION", "2024-01"),
		ShopifyAPISecret:  os.Getenv("SHOPIFY_API_SECRET"),
		RedactCustomerPII: os.Getenv("REDACT_CUSTOMER_PII") == "true",
	}

	for name, value := range map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
		"RABBITMQ_URL": cfg.RabbitMQURL,
		"CRON_SECRET":  cfg.CronSecret,
	} {
		if value == "" {
			return Config{}, fmt.Errorf("%s environment variable is required", name)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
