package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Hubtel groups the payment provider settings. Checkout and SMS use
// independent credential pairs.
type Hubtel struct {
	APIID           string
	APIKey          string
	ClientID        string
	ClientSecret    string
	MerchantAccount string
	CallbackURL     string
	ReturnURL       string
	CancelURL       string
	SenderID        string
	CheckoutURL     string
	SMSURL          string
	StatusURL       string
	Timeout         time.Duration
}

type Admin struct {
	Email    string
	Password string
}

type Config struct {
	Port    string
	DBDSN   string
	LogFile string

	Hubtel Hubtel
	Admin  Admin

	JWTSecret      string
	AccessTokenTTL time.Duration

	OrderTxTimeout    time.Duration
	ReconcileGrace    time.Duration
	ReconcileInterval time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] .env not loaded:", err)
	}

	cfg := Config{
		Port:    getEnvOrDefault("PORT", "8080"),
		DBDSN:   getEnvOrDefault("DB_DSN", "bubblebliss.db"),
		LogFile: getEnvOrDefault("LOG_FILE", ""),
		Hubtel: Hubtel{
			APIID:           getEnvOrDefault("HUBTEL_API_ID", ""),
			APIKey:          getEnvOrDefault("HUBTEL_API_KEY", ""),
			ClientID:        getEnvOrDefault("HUBTEL_CLIENT_ID", ""),
			ClientSecret:    getEnvOrDefault("HUBTEL_CLIENT_SECRET", ""),
			MerchantAccount: getEnvOrDefault("HUBTEL_MERCHANT_ACCOUNT", ""),
			CallbackURL:     getEnvOrDefault("HUBTEL_CALLBACK_URL", "https://PLACEHOLDER.example.com/orders/callback"),
			ReturnURL:       getEnvOrDefault("HUBTEL_RETURN_URL", "https://PLACEHOLDER.example.com/payment/success"),
			CancelURL:       getEnvOrDefault("HUBTEL_CANCEL_URL", "https://PLACEHOLDER.example.com/payment/cancelled"),
			SenderID:        getEnvOrDefault("HUBTEL_SENDER_ID", "BubbleBliss"),
			CheckoutURL:     getEnvOrDefault("HUBTEL_CHECKOUT_URL", "https://payproxyapi.hubtel.com/items/initiate"),
			SMSURL:          getEnvOrDefault("HUBTEL_SMS_URL", "https://smsc.hubtel.com/v1/messages/send"),
			StatusURL:       getEnvOrDefault("HUBTEL_STATUS_URL", ""),
			Timeout:         getDurationEnv("HUBTEL_TIMEOUT_SECONDS", 15, time.Second),
		},
		Admin: Admin{
			Email:    getEnvOrDefault("ADMIN_EMAIL", "admin@bubblebliss.com"),
			Password: getEnvOrDefault("ADMIN_PASSWORD", "ChangeMe123!"),
		},
		JWTSecret:         getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:    getDurationEnv("ACCESS_TOKEN_TTL_MINUTES", 24*60, time.Minute),
		OrderTxTimeout:    getDurationEnv("ORDER_TX_TIMEOUT_SECONDS", 30, time.Second),
		ReconcileGrace:    getDurationEnv("RECONCILE_GRACE_MINUTES", 15, time.Minute),
		ReconcileInterval: getIntervalEnv("RECONCILE_INTERVAL_MINUTES", 5, time.Minute),
	}
	if cfg.Hubtel.StatusURL == "" && cfg.Hubtel.MerchantAccount != "" {
		cfg.Hubtel.StatusURL = "https://api-txnstatus.hubtel.com/transactions/" + cfg.Hubtel.MerchantAccount + "/status"
	}

	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s HUBTEL_MERCHANT_ACCOUNT=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.Hubtel.MerchantAccount)
	for _, w := range cfg.Warnings() {
		log.Printf("[config] warning: %s", w)
	}
	return cfg
}

// Warnings lists settings that leave parts of the service degraded.
func (c Config) Warnings() []string {
	var out []string
	if c.Hubtel.APIID == "" || c.Hubtel.APIKey == "" {
		out = append(out, "HUBTEL_API_ID/HUBTEL_API_KEY not set; checkout will be rejected by the provider")
	}
	if c.Hubtel.ClientID == "" || c.Hubtel.ClientSecret == "" {
		out = append(out, "HUBTEL_CLIENT_ID/HUBTEL_CLIENT_SECRET not set; confirmation SMS will fail")
	}
	if c.Hubtel.MerchantAccount == "" {
		out = append(out, "HUBTEL_MERCHANT_ACCOUNT not set")
	}
	if c.JWTSecret == "" {
		out = append(out, "JWT_SECRET not set; admin routes are unusable")
	}
	return out
}

// ValidateServe checks the settings the HTTP server cannot run without.
func (c Config) ValidateServe() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.OrderTxTimeout <= 0 {
		return errors.New("ORDER_TX_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

// getIntervalEnv is getDurationEnv that also accepts 0 (disabled).
func getIntervalEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
