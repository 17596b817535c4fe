package server

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/farcloser/tactus"
)

const (
	defaultAddr           = ":8000"
	defaultAllowedOrigins = "http://localhost:3000"
	defaultMaxUploadBytes = 10 * 1024 * 1024
	defaultTimeout        = 60 * time.Second
)

// Config holds the service settings.
type Config struct {
	Addr           string
	AllowedOrigins string // comma separated
	MaxUploadBytes int64
	Timeout        time.Duration // transcode plus analysis, per request
	HistoryDB      string        // empty disables history
	Profile        tactus.Profile
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Addr:           defaultAddr,
		AllowedOrigins: defaultAllowedOrigins,
		MaxUploadBytes: defaultMaxUploadBytes,
		Timeout:        defaultTimeout,
		Profile:        tactus.ProfileStandard,
	}
}

// LoadConfig reads settings from the environment, after loading a .env file from the working
// directory if there is one.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if v := os.Getenv("TACTUS_ADDR"); v != "" {
		cfg.Addr = v
	}

	if v := os.Getenv("TACTUS_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = v
	}

	if v := os.Getenv("TACTUS_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("TACTUS_MAX_UPLOAD_BYTES: invalid value %q", v)
		}

		cfg.MaxUploadBytes = n
	}

	if v := os.Getenv("TACTUS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("TACTUS_TIMEOUT: invalid duration %q", v)
		}

		cfg.Timeout = d
	}

	cfg.HistoryDB = os.Getenv("TACTUS_HISTORY_DB")

	if v := os.Getenv("TACTUS_PROFILE"); v != "" {
		profile, err := tactus.ParseProfile(v)
		if err != nil {
			return cfg, fmt.Errorf("TACTUS_PROFILE: %w", err)
		}

		cfg.Profile = profile
	}

	return cfg, nil
}
