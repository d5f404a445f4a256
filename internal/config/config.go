// Package config loads process configuration once at startup. Nothing else
// in the codebase reads the environment; services receive settings by
// injection.
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

// Config holds every recognized option. Only DatabaseURL is mandatory;
// missing third-party credentials disable the corresponding feature.
type Config struct {
	Addr        string
	DatabaseURL string

	TokenSecret string
	TokenTTL    time.Duration

	CORSOrigins []string

	RedisAddr     string
	RedisPassword string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string

	StorageURL string
	StorageKey string
	UploadDir  string

	RateBurst    int
	RatePerSec   int
	MaxBodyBytes int64
}

// Load reads .env (if present) and the environment. The database connection
// string is fatal when absent; everything else has a default or degrades.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, relying on system env vars")
	}

	dbURL := strings.TrimSpace(os.Getenv("PRINTHUB_DATABASE_URL"))
	if dbURL == "" {
		return Config{}, errors.New("config: PRINTHUB_DATABASE_URL is required")
	}
	secret := strings.TrimSpace(os.Getenv("PRINTHUB_TOKEN_SECRET"))
	if secret == "" {
		return Config{}, errors.New("config: PRINTHUB_TOKEN_SECRET is required")
	}

	cfg := Config{
		Addr:          getEnv("PRINTHUB_ADDR", ":8080"),
		DatabaseURL:   dbURL,
		TokenSecret:   secret,
		TokenTTL:      durationOrDefault(os.Getenv("PRINTHUB_TOKEN_TTL"), 7*24*time.Hour),
		CORSOrigins:   splitList(os.Getenv("PRINTHUB_CORS_ORIGINS")),
		RedisAddr:     os.Getenv("PRINTHUB_REDIS_ADDR"),
		RedisPassword: os.Getenv("PRINTHUB_REDIS_PASSWORD"),
		SMTPHost:      os.Getenv("PRINTHUB_SMTP_HOST"),
		SMTPPort:      getEnv("PRINTHUB_SMTP_PORT", "465"),
		SMTPUsername:  os.Getenv("PRINTHUB_SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("PRINTHUB_SMTP_PASSWORD"),
		EmailFrom:     os.Getenv("PRINTHUB_EMAIL_FROM"),
		StorageURL:    os.Getenv("PRINTHUB_STORAGE_URL"),
		StorageKey:    os.Getenv("PRINTHUB_STORAGE_KEY"),
		UploadDir:     getEnv("PRINTHUB_UPLOAD_DIR", "uploads"),
		RateBurst:     intOrDefault(os.Getenv("PRINTHUB_RATE_BURST"), 20),
		RatePerSec:    intOrDefault(os.Getenv("PRINTHUB_RATE_PER_SEC"), 10),
		MaxBodyBytes:  int64(intOrDefault(os.Getenv("PRINTHUB_MAX_BODY_MB"), 25)) << 20,
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(raw string, def time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func intOrDefault(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
