// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
	_ "time/tzdata" // time_zone must resolve on hosts without zoneinfo

	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/schedule"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// ProfileImages are the avatar URLs shown before a picker's own image is revealed.
type ProfileImages struct {
	Male    string `koanf:"male"`
	Female  string `koanf:"female"`
	Unknown string `koanf:"unknown"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// StoreDriver selects memory or postgres persistence.
	StoreDriver string `koanf:"store_driver"`
	PostgresDSN string `koanf:"postgres_dsn"`

	// SeedFile is an optional YAML file of members, questions and images.
	SeedFile string `koanf:"seed_file"`

	NotifyQueueSize   int `koanf:"notify_queue_size"`
	NotifyWorkerCount int `koanf:"notify_worker_count"`
	DedupeSize        int `koanf:"dedupe_size"`

	// RevealCosts maps reveal item names (GENDER, PLATFORM, MID_INITIAL_NAME,
	// FULL_NAME) to coin costs. Unset items keep their default cost.
	RevealCosts    map[string]int64 `koanf:"reveal_costs"`
	SolvedPickCoin int64            `koanf:"solved_pick_coin"`
	InitialCoin    int64            `koanf:"initial_coin"`

	RankSize    int `koanf:"rank_size"`
	MaxPageSize int `koanf:"max_page_size"`

	// PickTimes are the daily pick windows as HH:MM in TimeZone.
	PickTimes []string `koanf:"pick_times"`
	TimeZone  string   `koanf:"time_zone"`

	ProfileImages  ProfileImages     `koanf:"profile_images"`
	PlatformImages map[string]string `koanf:"platform_images"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		ShutdownTimeout:   10 * time.Second,
		StoreDriver:       StoreMemory,
		NotifyQueueSize:   10_000,
		NotifyWorkerCount: runtime.NumCPU(),
		DedupeSize:        50_000,
		RevealCosts:       map[string]int64{},
		SolvedPickCoin:    10,
		InitialCoin:       200,
		RankSize:          3,
		MaxPageSize:       100,
		PickTimes:         []string{"09:00", "21:00"},
		TimeZone:          "Asia/Seoul",
		PlatformImages:    map[string]string{},
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: %w for the postgres store", ErrInvalidConfig, ErrMissingDSN)
		}
	default:
		return fmt.Errorf("%w: %w %q", ErrInvalidConfig, ErrUnknownStoreDriver, c.StoreDriver)
	}
	if c.RankSize < 1 {
		return fmt.Errorf("%w: rank_size must be positive", ErrInvalidConfig)
	}
	if c.MaxPageSize < 1 {
		return fmt.Errorf("%w: max_page_size must be positive", ErrInvalidConfig)
	}
	if c.SolvedPickCoin < 0 || c.InitialCoin < 0 {
		return fmt.Errorf("%w: coin amounts must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Costs(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Times(); err != nil {
		return err
	}
	return nil
}

// Location resolves TimeZone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: time_zone %q: %v", ErrInvalidConfig, ErrInvalidSchedule, c.TimeZone, err)
	}
	return loc, nil
}

// Times parses PickTimes.
func (c *Config) Times() ([]schedule.TimeOfDay, error) {
	times, err := schedule.ParseTimesOfDay(c.PickTimes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: pick_times: %w", ErrInvalidConfig, ErrInvalidSchedule, err)
	}
	return times, nil
}

// Costs parses RevealCosts into reveal items.
func (c *Config) Costs() (map[model.RevealItem]int64, error) {
	out := make(map[model.RevealItem]int64, len(c.RevealCosts))
	for name, cost := range c.RevealCosts {
		item, err := model.ParseRevealItem(name)
		if err != nil {
			return nil, fmt.Errorf("%w: reveal_costs: %w", ErrInvalidConfig, err)
		}
		if cost < 0 {
			return nil, fmt.Errorf("%w: reveal_costs: %s is negative", ErrInvalidConfig, name)
		}
		out[item] = cost
	}
	return out, nil
}

// Platforms returns PlatformImages keyed by platform.
func (c *Config) Platforms() map[model.Platform]string {
	out := make(map[model.Platform]string, len(c.PlatformImages))
	for name, url := range c.PlatformImages {
		out[model.ParsePlatform(name)] = url
	}
	return out
}
