package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Env  string
	Port string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	RedisURL string
	CartTTL  time.Duration

	KafkaBrokers       string
	PaymentResultTopic string
	ReceiptTopic       string
	ConsumerGroupID    string

	CatalogBaseURL string
	StaffBaseURL   string

	GatewayBaseURL     string
	GatewayAPIKey      string
	GatewayCallbackURL string

	SMSBaseURL    string
	SMSAccountSID string
	SMSAuthToken  string
	SMSFromNumber string

	// Transactions still Processing after this age are failed by the
	// reconciler sweep.
	ProcessingMaxAge time.Duration
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8090"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Africa/Nairobi"),

		RedisURL: getEnv("REDIS_URL", "redis://redis:6379"),
		CartTTL:  getDuration("CART_TTL", 12*time.Hour),

		KafkaBrokers:       getEnv("KAFKA_BROKERS", "localhost:9092"),
		PaymentResultTopic: getEnv("PAYMENT_RESULT_TOPIC", "payment.results"),
		ReceiptTopic:       getEnv("RECEIPT_TOPIC", "receipt.print"),
		ConsumerGroupID:    getEnv("CONSUMER_GROUP_ID", "pos-service-group"),

		CatalogBaseURL: getEnv("CATALOG_SERVICE_URL", "http://catalog-service:8081"),
		StaffBaseURL:   getEnv("STAFF_SERVICE_URL", "http://staff-service:8082"),

		GatewayBaseURL:     os.Getenv("MOBILE_MONEY_BASE_URL"),
		GatewayAPIKey:      os.Getenv("MOBILE_MONEY_API_KEY"),
		GatewayCallbackURL: os.Getenv("MOBILE_MONEY_CALLBACK_URL"),

		SMSBaseURL:    getEnv("SMS_BASE_URL", "https://api.twilio.com"),
		SMSAccountSID: os.Getenv("SMS_ACCOUNT_SID"),
		SMSAuthToken:  os.Getenv("SMS_AUTH_TOKEN"),
		SMSFromNumber: os.Getenv("SMS_FROM_NUMBER"),

		ProcessingMaxAge: getDuration("PROCESSING_MAX_AGE", 30*time.Minute),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" || cfg.PostgresHost == "" {
		return nil, fmt.Errorf("missing required database environment variables")
	}
	if cfg.GatewayBaseURL == "" || cfg.GatewayAPIKey == "" {
		return nil, fmt.Errorf("missing required mobile money gateway environment variables")
	}

	return cfg, nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB,
		c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
