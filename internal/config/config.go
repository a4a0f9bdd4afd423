package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string

	DatabaseURL   string
	DBAutoMigrate bool

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	AvailabilityTTL    time.Duration
	KafkaBrokers       []string
	KafkaTopic         string
	RabbitMQURL        string
	RabbitMQQueue      string
	NotifyBuffer       int
	BusinessTimezone   string
	AuthSecret         string
	AccessTokenTTL     time.Duration
	LoginMaxAttempts   int
	LoginAttemptWindow time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] WARN: failed to read .env: %v", err)
	}

	return Config{
		Port:          getEnv("PORT", "8080"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBAutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		AvailabilityTTL: getEnvDuration("AVAILABILITY_CACHE_TTL_SECONDS", 60*time.Second, time.Second),

		KafkaBrokers:  splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "venuepos.notifications"),
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		RabbitMQQueue: getEnv("RABBITMQ_QUEUE", "venuepos.notifications"),
		NotifyBuffer:  getEnvInt("NOTIFY_BUFFER", 256),

		BusinessTimezone: getEnv("BUSINESS_TIMEZONE", "Asia/Jakarta"),

		AuthSecret:         strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTL:     getEnvDuration("ACCESS_TOKEN_TTL_MINUTES", 480*time.Minute, time.Minute),
		LoginMaxAttempts:   getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginAttemptWindow: getEnvDuration("LOGIN_ATTEMPT_WINDOW_SECONDS", 5*time.Minute, time.Second),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Validate rejects settings the server must not start with.
func (c Config) Validate() (*time.Location, error) {
	if len(c.AuthSecret) < 32 {
		return nil, fmt.Errorf("AUTH_SECRET must be at least 32 characters")
	}
	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_TIMEZONE %q: %w", c.BusinessTimezone, err)
	}
	return loc, nil
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

// getEnvInt falls back on missing, malformed or negative values.
func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

// getEnvDuration reads an integer count of unit.
func getEnvDuration(key string, fallback time.Duration, unit time.Duration) time.Duration {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n < 1 {
		return fallback
	}
	return time.Duration(n) * unit
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
