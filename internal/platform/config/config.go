// Package config builds the application configuration from environment
// variables so main stays lean. Absent variables fall back to development
// defaults; an empty DATABASE_URL selects the in-memory stores.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "personsdir/pkg/platform/strings"
)

type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	DefaultLocale   string
}

type Database struct {
	URL string
}

type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CityCacheTTL time.Duration
}

type Kafka struct {
	Brokers []string
	Topic   string
}

// Images selects the photo blob backend: "disk" (default) or "s3".
type Images struct {
	Backend  string
	Dir      string
	BaseURL  string
	S3Bucket string
	S3Prefix string
	S3Region string
}

type Config struct {
	Server   Server
	Database Database
	Redis    Redis
	Kafka    Kafka
	Images   Images
}

// FromEnv reads the full configuration from the environment.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envOr("PERSONSDIR_ADDR", ":8080"),
			ShutdownTimeout: envDuration("PERSONSDIR_SHUTDOWN_TIMEOUT", 10*time.Second),
			DefaultLocale:   envOr("PERSONSDIR_DEFAULT_LOCALE", "en"),
		},
		Database: Database{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			CityCacheTTL: envDuration("REDIS_CITY_CACHE_TTL", time.Hour),
		},
		Kafka: Kafka{
			Brokers: pstrings.DedupeAndTrim(strings.Split(os.Getenv("KAFKA_BROKERS"), ",")),
			Topic:   envOr("KAFKA_AUDIT_TOPIC", "personsdir.audit"),
		},
		Images: Images{
			Backend:  envOr("IMAGES_BACKEND", "disk"),
			Dir:      envOr("IMAGES_DIR", "data/images"),
			BaseURL:  envOr("IMAGES_BASE_URL", "/images"),
			S3Bucket: os.Getenv("IMAGES_S3_BUCKET"),
			S3Prefix: envOr("IMAGES_S3_PREFIX", "persons"),
			S3Region: envOr("IMAGES_S3_REGION", "eu-central-1"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
