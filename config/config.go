package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port string

	DBDriver    string // postgres or sqlite
	SQLitePath  string
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBLogLevel  string

	JWTSecret     string
	JWTExpiration time.Duration

	CORSAllowedOrigins []string

	PaymentProvider        string // simulated, telr or stripe
	PaymentTimeout         time.Duration
	PaymentCurrency        string
	PaymentMinorUnitDigits int32

	TelrStoreID    int
	TelrAuthKey    string
	TelrAPIURL     string
	TelrMode       string
	TelrSuccessURL string
	TelrFailureURL string
	TelrCancelURL  string
	TelrWebhookKey string

	StripeSecretKey string

	AWSRegion                    string
	SQSOrderQueueName            string
	SQSOrderDLQURL               string
	SNSOrderConfirmationTopicARN string
	OrderConsumerEnabled         bool

	OutboxInterval    time.Duration
	OutboxMaxAttempts int

	StrictOrderTransitions bool
	LowStockThreshold      int

	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

func getEnv(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

// Load reads the process environment. main loads .env first.
func Load() (Config, error) {
	var errs []error

	duration := func(k string, d time.Duration) time.Duration {
		v, err := time.ParseDuration(getEnv(k, d.String()))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
			return d
		}
		return v
	}
	integer := func(k string, d int) int {
		v, err := strconv.Atoi(getEnv(k, strconv.Itoa(d)))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
			return d
		}
		return v
	}
	boolean := func(k string, d bool) bool {
		v, err := strconv.ParseBool(getEnv(k, strconv.FormatBool(d)))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
			return d
		}
		return v
	}

	cfg := Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnv("PORT", "8080"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		SQLitePath:  getEnv("SQLITE_PATH", "shopsphere.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "shopsphere"),
		DBLogLevel:  getEnv("DB_LOG_LEVEL", "warn"),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTExpiration: duration("JWT_EXPIRATION", 24*time.Hour),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		PaymentProvider:        strings.ToLower(getEnv("PAYMENT_PROVIDER", "simulated")),
		PaymentTimeout:         duration("PAYMENT_TIMEOUT", 10*time.Second),
		PaymentCurrency:        strings.ToUpper(getEnv("PAYMENT_CURRENCY", "USD")),
		PaymentMinorUnitDigits: int32(integer("PAYMENT_MINOR_UNIT_DIGITS", 2)),

		TelrStoreID:    integer("TELR_STORE_ID", 0),
		TelrAuthKey:    getEnv("TELR_AUTH_KEY", ""),
		TelrAPIURL:     getEnv("TELR_API_URL", "https://secure.telr.com/gateway/order.json"),
		TelrMode:       strings.ToLower(getEnv("TELR_MODE", "live")),
		TelrSuccessURL: getEnv("TELR_SUCCESS_URL", ""),
		TelrFailureURL: getEnv("TELR_FAILURE_URL", ""),
		TelrCancelURL:  getEnv("TELR_CANCEL_URL", ""),
		TelrWebhookKey: getEnv("TELR_WEBHOOK_SECRET", ""),

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),

		AWSRegion:                    getEnv("AWS_REGION", "us-east-1"),
		SQSOrderQueueName:            getEnv("SQS_ORDER_QUEUE_NAME", ""),
		SQSOrderDLQURL:               getEnv("SQS_ORDER_DLQ_URL", ""),
		SNSOrderConfirmationTopicARN: getEnv("SNS_ORDER_CONFIRMATION_TOPIC_ARN", ""),
		OrderConsumerEnabled:         boolean("ORDER_CONSUMER_ENABLED", false),

		OutboxInterval:    duration("OUTBOX_INTERVAL", 30*time.Second),
		OutboxMaxAttempts: integer("OUTBOX_MAX_ATTEMPTS", 5),

		StrictOrderTransitions: boolean("ORDER_STRICT_TRANSITIONS", false),
		LowStockThreshold:      integer("LOW_STOCK_THRESHOLD", 10),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@shopsphere.com"),
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver))
	}
	switch cfg.PaymentProvider {
	case "simulated":
	case "telr":
		if cfg.TelrStoreID == 0 || cfg.TelrAuthKey == "" {
			errs = append(errs, errors.New("telr configuration missing: TELR_STORE_ID and TELR_AUTH_KEY are required"))
		}
		if !cfg.TelrTestMode() && cfg.TelrWebhookKey == "" {
			errs = append(errs, errors.New("TELR_WEBHOOK_SECRET must be set unless TELR_MODE is sandbox"))
		}
		if cfg.TelrTestMode() && cfg.IsProduction() {
			errs = append(errs, errors.New("TELR_MODE sandbox skips webhook signatures and is not allowed in production"))
		}
	case "stripe":
		if cfg.StripeSecretKey == "" {
			errs = append(errs, errors.New("STRIPE_SECRET_KEY must be set for the stripe provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown PAYMENT_PROVIDER %q", cfg.PaymentProvider))
	}
	if cfg.OutboxMaxAttempts < 1 {
		errs = append(errs, errors.New("OUTBOX_MAX_ATTEMPTS must be at least 1"))
	}
	if cfg.OrderConsumerEnabled && (cfg.SQSOrderQueueName == "" || cfg.SNSOrderConfirmationTopicARN == "") {
		errs = append(errs, errors.New("ORDER_CONSUMER_ENABLED needs SQS_ORDER_QUEUE_NAME and SNS_ORDER_CONFIRMATION_TOPIC_ARN"))
	}

	return cfg, errors.Join(errs...)
}

// DSN prefers DATABASE_URL and falls back to the discrete DB_* settings.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func (c Config) IsProduction() bool { return c.Env == "prod" || c.Env == "production" }

// TelrTestMode keeps test transactions on the live endpoint in sandbox/dev.
func (c Config) TelrTestMode() bool { return c.TelrMode == "sandbox" || c.TelrMode == "dev" }

// TelrWebhookEnabled reports whether /payment/webhook should be mounted.
func (c Config) TelrWebhookEnabled() bool { return c.PaymentProvider == "telr" }

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
