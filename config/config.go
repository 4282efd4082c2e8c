package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Feed       FeedConfig       `yaml:"feed"`
	Venue      VenueConfig      `yaml:"venue"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Auth       AuthConfig       `yaml:"auth"`
	Session    SessionConfig    `yaml:"session"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "postgres" or "sqlite"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// FeedConfig controls the change-event feed poller.
type FeedConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
	BatchSize       int           `yaml:"batch_size"`
}

// VenueConfig holds the fixed operating parameters of the club floor.
type VenueConfig struct {
	Capacity        int     `yaml:"capacity"`
	AlertThreshold  float64 `yaml:"alert_threshold"`
	VIPMinimumSpend float64 `yaml:"vip_minimum_spend"`
	StdMinimumSpend float64 `yaml:"std_minimum_spend"`
	VIPTableCount   int     `yaml:"vip_table_count"`
	MainTableCount  int     `yaml:"main_table_count"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the alert worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Credential is one entry of the portal login registry. The registry is
// injected at start-up so the authentication boundary stays swappable for a
// real identity provider.
type Credential struct {
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Label     string `yaml:"label"`
	Clearance string `yaml:"clearance"`
}

// AuthConfig maps a gated role name to its credential entry.
type AuthConfig struct {
	Registry map[string]Credential `yaml:"registry"`
}

// SessionConfig controls client session continuity.
type SessionConfig struct {
	LastReservationFile string `yaml:"last_reservation_file"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database.dsn must be configured")
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Feed.IntervalSeconds <= 0 {
		cfg.Feed.IntervalSeconds = 2
	}
	cfg.Feed.Interval = time.Duration(cfg.Feed.IntervalSeconds) * time.Second
	if cfg.Feed.BatchSize <= 0 {
		cfg.Feed.BatchSize = 100
	}

	if cfg.Venue.Capacity <= 0 {
		cfg.Venue.Capacity = 200
	}
	if cfg.Venue.AlertThreshold <= 0 {
		cfg.Venue.AlertThreshold = 0.9
	}
	if cfg.Venue.VIPMinimumSpend <= 0 {
		cfg.Venue.VIPMinimumSpend = 1200
	}
	if cfg.Venue.StdMinimumSpend <= 0 {
		cfg.Venue.StdMinimumSpend = 500
	}
	if cfg.Venue.VIPTableCount <= 0 {
		cfg.Venue.VIPTableCount = 10
	}
	if cfg.Venue.MainTableCount <= 0 {
		cfg.Venue.MainTableCount = 20
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Session.LastReservationFile == "" {
		cfg.Session.LastReservationFile = "./pulse_last_res.json"
	}

	return &cfg, nil
}
