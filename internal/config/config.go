package config

import (
	"fmt"
	"os"
	"time"

	"github.com/alfredjeanlab/tally/internal/model"
)

type Config struct {
	DatabaseURL string        // TALLY_DATABASE_URL (required)
	HTTPAddr    string        // TALLY_HTTP_ADDR (default ":8080")
	NATSURL     string        // TALLY_NATS_URL (optional, empty = no events)
	AuthToken   string        // TALLY_AUTH_TOKEN (optional, empty = auth disabled)
	LeaseTTL    time.Duration // TALLY_LEASE_TTL (default 4h, capped at 12h)

	// Archive settings
	ArchiveInterval   time.Duration // TALLY_ARCHIVE_INTERVAL (default 1h; 0 = disabled)
	ArchiveDir        string        // TALLY_ARCHIVE_DIR (enables local export when set)
	ArchiveS3Bucket   string        // TALLY_ARCHIVE_S3_BUCKET (enables S3 when set)
	ArchiveS3Endpoint string        // TALLY_ARCHIVE_S3_ENDPOINT (custom endpoint for MinIO)
	ArchiveS3Region   string        // TALLY_ARCHIVE_S3_REGION (default "us-east-1")
	ArchiveS3Key      string        // TALLY_ARCHIVE_S3_KEY (default "tally/export.jsonl")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:       os.Getenv("TALLY_DATABASE_URL"),
		HTTPAddr:          envOrDefault("TALLY_HTTP_ADDR", ":8080"),
		NATSURL:           os.Getenv("TALLY_NATS_URL"),
		AuthToken:         os.Getenv("TALLY_AUTH_TOKEN"),
		ArchiveDir:        os.Getenv("TALLY_ARCHIVE_DIR"),
		ArchiveS3Bucket:   os.Getenv("TALLY_ARCHIVE_S3_BUCKET"),
		ArchiveS3Endpoint: os.Getenv("TALLY_ARCHIVE_S3_ENDPOINT"),
		ArchiveS3Region:   envOrDefault("TALLY_ARCHIVE_S3_REGION", "us-east-1"),
		ArchiveS3Key:      envOrDefault("TALLY_ARCHIVE_S3_KEY", "tally/export.jsonl"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("TALLY_DATABASE_URL is required")
	}

	ttlStr := envOrDefault("TALLY_LEASE_TTL", "")
	if ttlStr == "" {
		c.LeaseTTL = model.DefaultLeaseTTL
	} else {
		d, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("TALLY_LEASE_TTL: %w", err)
		}
		if d <= 0 || d > model.MaxLeaseTTL {
			return nil, fmt.Errorf("TALLY_LEASE_TTL must be between 0 and %s", model.MaxLeaseTTL)
		}
		c.LeaseTTL = d
	}

	intervalStr := envOrDefault("TALLY_ARCHIVE_INTERVAL", "1h")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("TALLY_ARCHIVE_INTERVAL: %w", err)
		}
		c.ArchiveInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
