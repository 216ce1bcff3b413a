// Package config provides Viper-based configuration loading for menagerie.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout" or a file path. Empty means stderr.
	Output string `mapstructure:"output"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// StorageConfig selects where rosters are saved.
type StorageConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `mapstructure:"driver"`
	// SQLitePath is the database file for the sqlite driver.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// ContentConfig locates the YAML and Lua game data.
type ContentConfig struct {
	CreaturesDir string `mapstructure:"creatures_dir"`
	ItemsDir     string `mapstructure:"items_dir"`
	// AffinityFile overrides the built-in element table when set.
	AffinityFile string `mapstructure:"affinity_file"`
	// GrowthFile and GrowthScript are mutually exclusive; with neither set the
	// built-in curve is used.
	GrowthFile   string `mapstructure:"growth_file"`
	GrowthScript string `mapstructure:"growth_script"`
}

// RosterConfig tunes roster rules.
type RosterConfig struct {
	// PartyModifier scales the stats of player-owned creatures.
	PartyModifier float64 `mapstructure:"party_modifier"`
	// PendingXPCap bounds XP banked for inactive members; 0 is unlimited.
	PendingXPCap int `mapstructure:"pending_xp_cap"`
}

// GachaConfig tunes pack opening.
type GachaConfig struct {
	CreatureChance float64 `mapstructure:"creature_chance"`
	StartingPacks  int     `mapstructure:"starting_packs"`
}

// SimConfig tunes the headless session.
type SimConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// WildPool lists the templates wild creatures are drawn from. Empty means
	// every loaded template.
	WildPool    []string `mapstructure:"wild_pool"`
	CaptureRate float64  `mapstructure:"capture_rate"`
	// Seed makes a session reproducible; 0 uses crypto randomness.
	Seed uint64 `mapstructure:"seed"`
	// AutosaveInterval is how often a running session is saved; 0 saves only
	// on shutdown.
	AutosaveInterval time.Duration `mapstructure:"autosave_interval"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Content  ContentConfig  `mapstructure:"content"`
	Roster   RosterConfig   `mapstructure:"roster"`
	Gacha    GachaConfig    `mapstructure:"gacha"`
	Sim      SimConfig      `mapstructure:"sim"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, err := range []error{
		validateLogging(c.Logging),
		validateStorage(c.Storage),
		validateContent(c.Content),
		validateRoster(c.Roster),
		validateGacha(c.Gacha),
		validateSim(c.Sim),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Storage.Driver == DriverPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func joined(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(errs, "; "))
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	return joined(errs)
}

func validateStorage(s StorageConfig) error {
	switch s.Driver {
	case DriverPostgres:
		return nil
	case DriverSQLite:
		if s.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path must not be empty for the sqlite driver")
		}
		return nil
	default:
		return fmt.Errorf("storage.driver must be one of [postgres, sqlite], got %q", s.Driver)
	}
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.CreaturesDir == "" {
		errs = append(errs, "content.creatures_dir must not be empty")
	}
	if c.ItemsDir == "" {
		errs = append(errs, "content.items_dir must not be empty")
	}
	if c.GrowthFile != "" && c.GrowthScript != "" {
		errs = append(errs, "content.growth_file and content.growth_script are mutually exclusive")
	}
	return joined(errs)
}

func validateRoster(r RosterConfig) error {
	var errs []string
	if r.PartyModifier <= 0 {
		errs = append(errs, fmt.Sprintf("roster.party_modifier must be > 0, got %v", r.PartyModifier))
	}
	if r.PendingXPCap < 0 {
		errs = append(errs, fmt.Sprintf("roster.pending_xp_cap must be >= 0, got %d", r.PendingXPCap))
	}
	return joined(errs)
}

func validateGacha(g GachaConfig) error {
	var errs []string
	if g.CreatureChance < 0 || g.CreatureChance > 1 {
		errs = append(errs, fmt.Sprintf("gacha.creature_chance must be in [0, 1], got %v", g.CreatureChance))
	}
	if g.StartingPacks < 0 {
		errs = append(errs, fmt.Sprintf("gacha.starting_packs must be >= 0, got %d", g.StartingPacks))
	}
	return joined(errs)
}

func validateSim(s SimConfig) error {
	var errs []string
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("sim.tick_interval must be > 0, got %s", s.TickInterval))
	}
	if s.AutosaveInterval < 0 {
		errs = append(errs, fmt.Sprintf("sim.autosave_interval must be >= 0, got %s", s.AutosaveInterval))
	}
	if s.CaptureRate < 0 || s.CaptureRate > 1 {
		errs = append(errs, fmt.Sprintf("sim.capture_rate must be in [0, 1], got %v", s.CaptureRate))
	}
	return joined(errs)
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and MENAGERIE_ environment
// overrides applied, ready for a config file or flag bindings.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("MENAGERIE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "menagerie")
	v.SetDefault("database.password", "menagerie")
	v.SetDefault("database.name", "menagerie")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.sqlite_path", "menagerie.db")

	v.SetDefault("content.creatures_dir", "content/creatures")
	v.SetDefault("content.items_dir", "content/items")

	v.SetDefault("roster.party_modifier", 1.0)
	v.SetDefault("roster.pending_xp_cap", 0)

	v.SetDefault("gacha.creature_chance", 0.5)
	v.SetDefault("gacha.starting_packs", 3)

	v.SetDefault("sim.tick_interval", "500ms")
	v.SetDefault("sim.capture_rate", 0.25)
	v.SetDefault("sim.autosave_interval", "30s")
}
