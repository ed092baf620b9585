// Package config loads the station configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/welllit/pkg/wells"
	"gopkg.in/yaml.v3"
)

// DefaultPath is looked up when no --config flag is given.
const DefaultPath = "welllit.yaml"

// Config is the on-disk station configuration.
type Config struct {
	SourceDensity int    `yaml:"source_density" json:"source_density" toml:"source_density"`
	DestDensity   int    `yaml:"dest_density" json:"dest_density" toml:"dest_density"`
	RecordsDir    string `yaml:"records_dir" json:"records_dir" toml:"records_dir"`

	Log    LogConfig    `yaml:"log" json:"log" toml:"log"`
	Redis  RedisConfig  `yaml:"redis" json:"redis" toml:"redis"`
	SQLite SQLiteConfig `yaml:"sqlite" json:"sqlite" toml:"sqlite"`
	HTTP   HTTPConfig   `yaml:"http" json:"http" toml:"http"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level" toml:"level"`
	// File receives a JSON audit copy of every Info+ line when set.
	File string `yaml:"file" json:"file" toml:"file"`
}

// RedisConfig enables the Redis record sink when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr" toml:"addr"`
	Password string `yaml:"password" json:"password" toml:"password"`
	DB       int    `yaml:"db" json:"db" toml:"db"`
	Prefix   string `yaml:"prefix" json:"prefix" toml:"prefix"`
	TTL      string `yaml:"ttl" json:"ttl" toml:"ttl"`
}

// SQLiteConfig enables the SQLite record sink when Path is set.
type SQLiteConfig struct {
	Path string `yaml:"path" json:"path" toml:"path"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" json:"addr" toml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		SourceDensity: 96,
		DestDensity:   96,
		RecordsDir:    filepath.Join(".welllit", "records"),
		Log:           LogConfig{Level: "info"},
		HTTP:          HTTPConfig{Addr: ":8080"},
	}
}

// Load reads the file at path over the defaults. The format follows the
// extension (.yaml/.yml, .json, .toml). A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".toml":
		_, err = toml.Decode(string(data), &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be caught by decoding.
func (c Config) Validate() error {
	if _, _, err := c.Densities(); err != nil {
		return err
	}
	if _, err := c.Redis.Expiry(); err != nil {
		return err
	}
	return nil
}

// Densities returns the source and destination plate densities.
func (c Config) Densities() (wells.Density, wells.Density, error) {
	src, err := wells.ParseDensity(c.SourceDensity)
	if err != nil {
		return 0, 0, fmt.Errorf("source_density: %w", err)
	}
	dst, err := wells.ParseDensity(c.DestDensity)
	if err != nil {
		return 0, 0, fmt.Errorf("dest_density: %w", err)
	}
	return src, dst, nil
}

// Expiry parses the TTL; empty means no expiration.
func (r RedisConfig) Expiry() (time.Duration, error) {
	if strings.TrimSpace(r.TTL) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(r.TTL))
	if err != nil {
		return 0, fmt.Errorf("redis.ttl: %w", err)
	}
	return d, nil
}
