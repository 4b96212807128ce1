package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Europe/Madrid"
	configPathEnv   = "RESOLUTION_SCANNER_CONFIG"
	dotEnvPathEnv   = "RESOLUTION_SCANNER_ENV_FILE"
	listingURLEnv   = "PDF_DOWNLOAD_URL"
	databaseDSNEnv  = "DATABASE_DSN"
	databaseDrvEnv  = "DATABASE_DRIVER"
	archiveDirEnv   = "ARCHIVE_DIR"
	logLevelEnv     = "LOG_LEVEL"
	scheduleCronEnv = "SCHEDULE_CRON"

	// DocumentMarker is the path segment the publisher uses to serve binaries.
	DocumentMarker = "obtenerBinarioDocumento"
)

// Heuristic names understood by the link discovery registry.
const (
	HeuristicMarkerHref   = "marker_href"
	HeuristicMarkerScript = "marker_script"
	HeuristicKeywordText  = "keyword_text"
	HeuristicTableRows    = "table_rows"
)

var (
	ErrMissingListingURL = errors.New("listing url is required (" + listingURLEnv + ")")
	ErrMissingDSN        = errors.New("database dsn is required (" + databaseDSNEnv + ")")
)

// Config holds high-level settings required across the application.
type Config struct {
	Listing    ListingConfig    `yaml:"listing"`
	Fetcher    FetcherConfig    `yaml:"fetcher"`
	Database   DatabaseConfig   `yaml:"database"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ListingConfig describes the page that publishes resolution documents.
type ListingConfig struct {
	URL        string   `yaml:"url"`
	Marker     string   `yaml:"marker"`
	Keywords   []string `yaml:"keywords"`
	Heuristics []string `yaml:"heuristics"`
}

// FetcherConfig shapes outbound requests to the publisher.
type FetcherConfig struct {
	Timeout           time.Duration `yaml:"timeout"`
	UserAgent         string        `yaml:"userAgent"`
	AcceptLanguage    string        `yaml:"acceptLanguage"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Burst             int           `yaml:"burst"`
	MaxDocumentBytes  int64         `yaml:"maxDocumentBytes"`
}

// DatabaseConfig describes the case store connection.
type DatabaseConfig struct {
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	AutoMigrate bool   `yaml:"autoMigrate"`
}

// ArchiveConfig controls where fetched documents are kept.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// ClassifierConfig toggles classification variants.
type ClassifierConfig struct {
	SplitExpressWithdrawal bool `yaml:"splitExpressWithdrawal"`
}

// SchedulerConfig defines when the batch should run.
type SchedulerConfig struct {
	Enabled        bool           `yaml:"enabled"`
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	return time.UTC
}

// Load reads YAML configuration (if present), the .env file and environment
// overrides, then validates required settings.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		// Keys absent from the file keep their defaults.
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	loadDotEnv()
	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fails when a setting the pipeline cannot run without is absent.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Listing.URL) == "" {
		return ErrMissingListingURL
	}
	parsed, err := url.Parse(c.Listing.URL)
	if err != nil || !parsed.IsAbs() {
		return fmt.Errorf("listing url %q must be absolute", c.Listing.URL)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return ErrMissingDSN
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Scheduler.Enabled && strings.TrimSpace(c.Scheduler.CronExpression) == "" {
		return errors.New("scheduler enabled without cron expression")
	}
	return nil
}

func loadDotEnv() {
	path := os.Getenv(dotEnvPathEnv)
	if path == "" {
		path = ".env"
	}
	// godotenv never overrides variables already present in the environment.
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: cannot load %s: %v", path, err)
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(listingURLEnv); v != "" {
		c.Listing.URL = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(databaseDrvEnv); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(archiveDirEnv); v != "" {
		c.Archive.Dir = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(scheduleCronEnv); v != "" {
		c.Scheduler.CronExpression = v
		c.Scheduler.Enabled = true
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to UTC", tz)
		loc = time.UTC
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	return Config{
		Listing: ListingConfig{
			Marker:   DocumentMarker,
			Keywords: []string{"resolución", "concesión", "ayuda", "kit digital"},
			Heuristics: []string{
				HeuristicMarkerHref,
				HeuristicMarkerScript,
				HeuristicKeywordText,
				HeuristicTableRows,
			},
		},
		Fetcher: FetcherConfig{
			Timeout:           30 * time.Second,
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			AcceptLanguage:    "es-ES,es;q=0.8,en-US;q=0.5,en;q=0.3",
			RequestsPerSecond: 2,
			Burst:             1,
			MaxDocumentBytes:  64 << 20,
		},
		Database: DatabaseConfig{Driver: "postgres"},
		Archive:  ArchiveConfig{Enabled: true, Dir: "pdfs"},
		Scheduler: SchedulerConfig{
			CronExpression: "0 6 * * *",
			Timezone:       defaultTimezone,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
