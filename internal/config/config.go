package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/tlvf/internal/logging"
	"github.com/danmuck/tlvf/internal/protocol/tlvf"
	"github.com/rs/zerolog/log"
)

// Config is the tlvctl configuration file.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Codec   CodecConfig   `toml:"codec"`
	Metrics MetricsConfig `toml:"metrics"`
}

type LogConfig struct {
	Level     string `toml:"level"`
	Timestamp bool   `toml:"timestamp"`
	NoColor   bool   `toml:"no_color"`
}

// CodecConfig bounds the buffers of built messages and sets how unknown
// TLV types are handled on parse.
type CodecConfig struct {
	CapacityHint int  `toml:"capacity_hint"`
	MaxCapacity  int  `toml:"max_capacity"`
	StrictTypes  bool `toml:"strict_types"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:     "info",
			Timestamp: true,
		},
		Codec: CodecConfig{
			CapacityHint: 256,
			MaxCapacity:  1500,
		},
	}
}

// Load overlays the keys present in path onto DefaultConfig. Keys absent
// from the file keep their defaults, so a zero value in the file is honoured.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw Config
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	for _, key := range meta.Undecoded() {
		log.Warn().Str("path", path).Str("key", key.String()).Msg("config key ignored")
	}

	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "timestamp") {
		cfg.Log.Timestamp = raw.Log.Timestamp
	}
	if meta.IsDefined("log", "no_color") {
		cfg.Log.NoColor = raw.Log.NoColor
	}
	if meta.IsDefined("codec", "capacity_hint") {
		cfg.Codec.CapacityHint = raw.Codec.CapacityHint
	}
	if meta.IsDefined("codec", "max_capacity") {
		cfg.Codec.MaxCapacity = raw.Codec.MaxCapacity
	}
	if meta.IsDefined("codec", "strict_types") {
		cfg.Codec.StrictTypes = raw.Codec.StrictTypes
	}
	if meta.IsDefined("metrics", "enabled") {
		cfg.Metrics.Enabled = raw.Metrics.Enabled
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
		return fmt.Errorf("log.level %q is not a level", cfg.Log.Level)
	}
	if cfg.Codec.CapacityHint < 0 {
		return fmt.Errorf("codec.capacity_hint must not be negative")
	}
	if cfg.Codec.MaxCapacity < 0 {
		return fmt.Errorf("codec.max_capacity must not be negative")
	}
	if cfg.Codec.MaxCapacity > 0 && cfg.Codec.CapacityHint > cfg.Codec.MaxCapacity {
		return fmt.Errorf("codec.capacity_hint %d exceeds codec.max_capacity %d", cfg.Codec.CapacityHint, cfg.Codec.MaxCapacity)
	}
	return nil
}

// Limits is the arena bound for messages built under this config.
func (c Config) Limits() tlvf.Limits {
	return tlvf.Limits{
		CapacityHint: c.Codec.CapacityHint,
		MaxCapacity:  c.Codec.MaxCapacity,
	}
}

// ApplyLogging copies the [log] table into a logger setup. It is meant as
// the override passed to logging.Configure.
func (c Config) ApplyLogging(lc *logging.Config) {
	if lvl, ok := logging.ParseLevel(c.Log.Level); ok {
		lc.Level = lvl
	}
	lc.Timestamp = c.Log.Timestamp
	lc.NoColor = lc.NoColor || c.Log.NoColor
}
