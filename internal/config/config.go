// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
//
// Values are resolved in three layers: an optional .env file, an optional YAML
// file named by CONFIG_FILE (non-secret lists such as catalog search terms),
// then the process environment, which always wins.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Identity resolution modes.
const (
	AuthHeader = "header" // trust x-user-id forwarded by the gateway
	AuthJWT    = "jwt"    // verify an HS256 bearer token
)

// Config holds all runtime configuration for the tracker service.
type Config struct {
	Port         string   `yaml:"port"`
	StoreBackend string   `yaml:"store_backend"`
	DatabaseURL  string   `yaml:"-"`
	RedisURL     string   `yaml:"-"`
	AuthMode     string   `yaml:"auth_mode"`
	JWTSecret    string   `yaml:"-"`
	APIPrefix    string   `yaml:"api_prefix"`
	CORSOrigins  []string `yaml:"cors_origins"`

	CloudinaryURL string `yaml:"-"`
	UploadsDir    string `yaml:"uploads_dir"`
	MaxUploadMB   int    `yaml:"max_upload_mb"`

	Catalog Catalog `yaml:"catalog"`
}

// Catalog configures the external job feed.
type Catalog struct {
	AdzunaAppID         string   `yaml:"-"`
	AdzunaAppKey        string   `yaml:"-"`
	AdzunaCountry       string   `yaml:"adzuna_country"` // e.g. "in", "gb", "us"
	ScrapeIntervalHours int      `yaml:"scrape_interval_hours"`
	Titles              []string `yaml:"titles"`
	Locations           []string `yaml:"locations"`
	RedFlags            []string `yaml:"red_flags"` // any match discards the listing
}

// MaxUploadBytes returns the multipart size limit for résumé uploads.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] .env file not found, using environment variables")
	}

	cfg := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read CONFIG_FILE: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse CONFIG_FILE %s: %w", path, err)
		}
	}

	overrideString(&cfg.Port, "TRACKER_PORT")
	overrideString(&cfg.StoreBackend, "STORE_BACKEND")
	overrideString(&cfg.AuthMode, "AUTH_MODE")
	overrideString(&cfg.APIPrefix, "API_PREFIX")
	overrideString(&cfg.UploadsDir, "UPLOADS_DIR")
	overrideString(&cfg.Catalog.AdzunaCountry, "ADZUNA_COUNTRY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.CloudinaryURL = os.Getenv("CLOUDINARY_URL")
	cfg.Catalog.AdzunaAppID = os.Getenv("ADZUNA_APP_ID")
	cfg.Catalog.AdzunaAppKey = os.Getenv("ADZUNA_APP_KEY")
	if s := os.Getenv("CORS_ORIGINS"); s != "" {
		cfg.CORSOrigins = splitList(s)
	}

	if s := os.Getenv("MAX_UPLOAD_MB"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("MAX_UPLOAD_MB must be a positive integer, got %q", s)
		}
		cfg.MaxUploadMB = v
	}
	if s := os.Getenv("SCRAPE_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SCRAPE_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		cfg.Catalog.ScrapeIntervalHours = v
	}

	applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = "8082"
	}
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = StorePostgres
	}
	if cfg.AuthMode == "" {
		cfg.AuthMode = AuthHeader
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/user"
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if cfg.UploadsDir == "" {
		cfg.UploadsDir = "./uploads"
	}
	if cfg.MaxUploadMB == 0 {
		cfg.MaxUploadMB = 10
	}
	if cfg.Catalog.AdzunaCountry == "" {
		cfg.Catalog.AdzunaCountry = "in"
	}
	if cfg.Catalog.ScrapeIntervalHours == 0 {
		cfg.Catalog.ScrapeIntervalHours = 6
	}
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StorePostgres, StoreMemory, c.StoreBackend)
	}

	switch c.AuthMode {
	case AuthHeader:
	case AuthJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthHeader, AuthJWT, c.AuthMode)
	}

	if c.CloudinaryURL == "" {
		return fmt.Errorf("CLOUDINARY_URL is required")
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("API_PREFIX must start with /, got %q", c.APIPrefix)
	}
	return nil
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
