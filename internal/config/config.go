package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/floorpop/internal/logger"
	"github.com/lawnchairsociety/floorpop/internal/populate"
	"github.com/lawnchairsociety/floorpop/internal/store"
)

// Config holds floorpop-wide configuration settings.
type Config struct {
	// ContentDir is the directory holding the catalog YAML files.
	ContentDir string `yaml:"content_dir"`

	Spawn     SpawnConfig     `yaml:"spawn"`
	Database  DatabaseConfig  `yaml:"database"`
	Inspector InspectorConfig `yaml:"inspector"`
	Logging   logger.Config   `yaml:"logging"`
}

// SpawnConfig holds the allocator tuning knobs.
type SpawnConfig struct {
	// EncounterSpacing is the minimum distance in tiles between two encounter
	// centers in the same region.
	EncounterSpacing int `yaml:"encounter_spacing"`

	// EncounterAttempts caps consecutive failed placements per region.
	EncounterAttempts int `yaml:"encounter_attempts"`

	// ThemeClusterChance is the probability of copying a neighbour's theme.
	ThemeClusterChance float64 `yaml:"theme_cluster_chance"`

	// GuardedTreasureRegions is how many of the most dangerous regions get guarded loot.
	GuardedTreasureRegions int `yaml:"guarded_treasure_regions"`

	// MinCreatures below which a floor is flagged in the summary.
	MinCreatures int `yaml:"min_creatures"`

	// MinUtilization is the fraction of the power budget a floor should spend.
	MinUtilization float64 `yaml:"min_utilization"`

	// LootAttempts caps item picks per region during loot scattering.
	LootAttempts int `yaml:"loot_attempts"`
}

// DatabaseConfig selects and configures the persistence backend.
type DatabaseConfig struct {
	// Driver is "sqlite" (default), "postgres", or "none".
	Driver     string         `yaml:"driver"`
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// InspectorConfig holds the websocket summary feed settings.
type InspectorConfig struct {
	Addr string `yaml:"addr"`

	// AllowedOrigins is a list of origins allowed to connect.
	// Empty list enforces same-origin policy, "*" allows everything.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DefaultConfig returns a Config with the stock tuning.
func DefaultConfig() *Config {
	tuning := populate.DefaultTuning()
	return &Config{
		ContentDir: "data",
		Spawn: SpawnConfig{
			EncounterSpacing:       tuning.EncounterSpacing,
			EncounterAttempts:      tuning.EncounterAttempts,
			ThemeClusterChance:     tuning.ThemeClusterChance,
			GuardedTreasureRegions: tuning.GuardedTreasureRegions,
			MinCreatures:           tuning.MinCreatures,
			MinUtilization:         tuning.MinUtilization,
			LootAttempts:           tuning.LootAttempts,
		},
		Database: DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: "data/floorpop.db",
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "disable",
			},
		},
		Inspector: InspectorConfig{
			Addr:           "127.0.0.1:8089",
			AllowedOrigins: []string{},
		},
		Logging: logger.DefaultConfig(),
	}
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, returns the default config.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			config.Logging = logger.ApplyEnv(config.Logging)
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config YAML: %w", err)
	}
	config.Logging = logger.ApplyEnv(config.Logging)

	if err := config.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return config, nil
}

// Validate rejects settings the allocator cannot run with.
func (c *Config) Validate() error {
	if c.Spawn.EncounterSpacing < 0 {
		return fmt.Errorf("spawn.encounter_spacing must be >= 0, got %d", c.Spawn.EncounterSpacing)
	}
	if c.Spawn.EncounterAttempts <= 0 {
		return fmt.Errorf("spawn.encounter_attempts must be > 0, got %d", c.Spawn.EncounterAttempts)
	}
	if c.Spawn.ThemeClusterChance < 0 || c.Spawn.ThemeClusterChance > 1 {
		return fmt.Errorf("spawn.theme_cluster_chance must be within [0,1], got %g", c.Spawn.ThemeClusterChance)
	}
	if c.Spawn.MinUtilization < 0 || c.Spawn.MinUtilization > 1 {
		return fmt.Errorf("spawn.min_utilization must be within [0,1], got %g", c.Spawn.MinUtilization)
	}
	switch c.Database.Driver {
	case "", "sqlite", "postgres", "none":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	return nil
}

// Tuning converts the spawn section into allocator tuning.
// Zero values fall back to the defaults.
func (c *Config) Tuning() populate.Tuning {
	t := populate.DefaultTuning()
	if c.Spawn.EncounterSpacing > 0 {
		t.EncounterSpacing = c.Spawn.EncounterSpacing
	}
	if c.Spawn.EncounterAttempts > 0 {
		t.EncounterAttempts = c.Spawn.EncounterAttempts
	}
	t.ThemeClusterChance = c.Spawn.ThemeClusterChance
	if c.Spawn.GuardedTreasureRegions > 0 {
		t.GuardedTreasureRegions = c.Spawn.GuardedTreasureRegions
	}
	if c.Spawn.MinCreatures > 0 {
		t.MinCreatures = c.Spawn.MinCreatures
	}
	t.MinUtilization = c.Spawn.MinUtilization
	if c.Spawn.LootAttempts > 0 {
		t.LootAttempts = c.Spawn.LootAttempts
	}
	return t
}

// StoreConfig converts the database section into store settings.
// ok is false when persistence is disabled.
func (c *Config) StoreConfig() (cfg store.Config, ok bool) {
	switch c.Database.Driver {
	case "none":
		return store.Config{}, false
	case "postgres":
		pg := c.Database.Postgres
		return store.Config{
			Driver: store.DialectPostgres,
			DSN: fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				pg.Host, pg.Port, pg.User, pg.Password, pg.Database, pg.SSLMode),
		}, true
	default:
		return store.Config{
			Driver: store.DialectSQLite,
			DSN:    c.Database.SQLitePath,
		}, true
	}
}

// IsOriginAllowed checks if the given origin may open an inspector feed.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *InspectorConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// isSameOrigin checks if the origin matches the request host.
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // non-browser client
	}

	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
