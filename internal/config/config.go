// Package config loads engine configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mapforge/crossid/internal/domain/catalog"
	"github.com/mapforge/crossid/internal/match"
)

// Config holds all engine configuration.
type Config struct {
	Assets  AssetsConfig  `yaml:"assets"`
	Matcher MatcherConfig `yaml:"matcher"`
	Cache   CacheConfig   `yaml:"cache"`
	Bridge  BridgeConfig  `yaml:"bridge"`
}

// AssetsConfig holds paths to the item and sprite databases.
type AssetsConfig struct {
	ItemsPath   string `yaml:"items_path"`
	SpritesPath string `yaml:"sprites_path"`
}

// MatcherConfig holds the paste-time fallback policy.
type MatcherConfig struct {
	OnNoMatch     string `yaml:"on_no_match"`    // "skip" or "placeholder"
	PlaceholderID uint16 `yaml:"placeholder_id"` // used when on_no_match is "placeholder"
	OnCollision   string `yaml:"on_collision"`   // "first" or "skip"
}

// CacheConfig holds the sprite pixel cache and fingerprint store settings.
type CacheConfig struct {
	SpriteLRUSize int    `yaml:"sprite_lru_size"`
	DatabasePath  string `yaml:"database_path"` // empty disables the sqlite store
}

// BridgeConfig holds the transfer bridge server settings.
type BridgeConfig struct {
	ListenAddr     string `yaml:"listen_addr"`
	MaxPayloadSize int64  `yaml:"max_payload_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Matcher: MatcherConfig{
			OnNoMatch:   "skip",
			OnCollision: "first",
		},
		Cache: CacheConfig{
			SpriteLRUSize: 4096,
			DatabasePath:  "crossid.db",
		},
		Bridge: BridgeConfig{
			ListenAddr:     ":8091",
			MaxPayloadSize: 4 << 20,
		},
	}
}

// Load reads and validates a YAML configuration file. Unset fields keep the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Matcher.OnNoMatch {
	case "skip", "placeholder":
	default:
		return fmt.Errorf("invalid matcher.on_no_match %q (want skip or placeholder)", c.Matcher.OnNoMatch)
	}
	switch c.Matcher.OnCollision {
	case "first", "skip":
	default:
		return fmt.Errorf("invalid matcher.on_collision %q (want first or skip)", c.Matcher.OnCollision)
	}
	if c.Cache.SpriteLRUSize <= 0 {
		return fmt.Errorf("invalid cache.sprite_lru_size %d", c.Cache.SpriteLRUSize)
	}
	return nil
}

// Policy builds the match policy described by the matcher section.
func (c *Config) Policy() match.Policy {
	p := match.DefaultPolicy()
	if c.Matcher.OnNoMatch == "placeholder" {
		p.OnNoMatch = match.NoMatchPlaceholder
		p.PlaceholderID = catalog.ServerID(c.Matcher.PlaceholderID)
	}
	if c.Matcher.OnCollision == "skip" {
		p.OnCollision = match.CollisionSkip
	}
	return p
}
