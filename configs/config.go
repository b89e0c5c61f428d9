package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv    string
	DBSource  string
	Port      string
	JWTSecret string
	JWTTTL    time.Duration

	VNPayTmnCode    string
	VNPayHashSecret string
	VNPayPaymentURL string
	VNPayReturnURL  string

	RedisURL       string
	IdempotencyTTL time.Duration

	PendingTxnTTL time.Duration
	SweepInterval time.Duration

	SeedDemo bool
}

func LoadConfig() *Config {
	// .env is optional; real deployments pass the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	return &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		DBSource:  getEnv("DB_SOURCE", "food.db"),
		Port:      getEnv("PORT", "8000"),
		JWTSecret: getEnv("JWT_SECRET", "changeme"),
		JWTTTL:    getDuration("JWT_TTL", 24*time.Hour),

		VNPayTmnCode:    getEnv("VNPAY_TMN_CODE", ""),
		VNPayHashSecret: getEnv("VNPAY_HASH_SECRET", ""),
		VNPayPaymentURL: getEnv("VNPAY_PAYMENT_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
		VNPayReturnURL:  getEnv("VNPAY_RETURN_URL", "http://localhost:8000/payments/vnpay/return"),

		RedisURL:       getEnv("REDIS_URL", ""),
		IdempotencyTTL: getDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		PendingTxnTTL: getDuration("PENDING_TXN_TTL", 0),
		SweepInterval: getDuration("SWEEP_INTERVAL", 0),

		SeedDemo: getBool("SEED_DEMO", false),
	}
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
