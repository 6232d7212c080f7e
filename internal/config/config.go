// Package config loads gaugectl settings from a YAML file, GAUGE_* environment
// variables and command-line overrides, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"bq28z610-go/drivers/bq28z610"
)

const EnvPrefix = "GAUGE"

type BusConfig struct {
	Name    string `mapstructure:"name"`
	SpeedHz int64  `mapstructure:"speedHz"`
	Sim     bool   `mapstructure:"sim"`
}

type GaugeConfig struct {
	Address       uint16 `mapstructure:"address"`
	UnsealKey     string `mapstructure:"unsealKey"`
	FullAccessKey string `mapstructure:"fullAccessKey"`
	CheckSealed   bool   `mapstructure:"checkSealed"`
	Retries       int    `mapstructure:"retries"`
}

type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

type DFTableConfig struct {
	Path string `mapstructure:"path"`
}

type ExporterConfig struct {
	Addr     string        `mapstructure:"addr"`
	Path     string        `mapstructure:"path"`
	Interval time.Duration `mapstructure:"interval"`
}

type Config struct {
	Bus      BusConfig      `mapstructure:"bus"`
	Gauge    GaugeConfig    `mapstructure:"gauge"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	DFTable  DFTableConfig  `mapstructure:"dftable"`
	Exporter ExporterConfig `mapstructure:"exporter"`
}

// Load reads path (optional) and applies overrides keyed by dotted setting
// name, e.g. "bus.sim".
func Load(path string, overrides map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = v.GetString("config")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("gaugectl")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	for k, val := range overrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bus.name", "")
	v.SetDefault("bus.speedHz", 100_000)
	v.SetDefault("bus.sim", false)

	v.SetDefault("gauge.address", bq28z610.AddressDefault)
	v.SetDefault("gauge.unsealKey", "0x36720414")
	v.SetDefault("gauge.fullAccessKey", "0xFFFFFFFF")
	v.SetDefault("gauge.checkSealed", true)
	v.SetDefault("gauge.retries", 2)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 10)
	v.SetDefault("logging.file.maxBackups", 3)
	v.SetDefault("logging.file.maxAge", 28)
	v.SetDefault("logging.file.compress", false)

	v.SetDefault("dftable.path", "")

	v.SetDefault("exporter.addr", ":9610")
	v.SetDefault("exporter.path", "/metrics")
	v.SetDefault("exporter.interval", "10s")
}

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	if c.Gauge.Address == 0 || c.Gauge.Address > 0x7F {
		return fmt.Errorf("gauge.address %#x is not a 7-bit I2C address", c.Gauge.Address)
	}
	if _, _, err := c.Keys(); err != nil {
		return err
	}
	if c.Gauge.Retries < 0 {
		return errors.New("gauge.retries must not be negative")
	}
	if c.Exporter.Interval <= 0 {
		return errors.New("exporter.interval must be positive")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q: want console or json", c.Logging.Format)
	}
	return nil
}

// Keys parses the unseal and full-access keys.
func (c *Config) Keys() (unseal, full uint32, err error) {
	unseal, err = ParseKey(c.Gauge.UnsealKey)
	if err != nil {
		return 0, 0, fmt.Errorf("gauge.unsealKey: %w", err)
	}
	full, err = ParseKey(c.Gauge.FullAccessKey)
	if err != nil {
		return 0, 0, fmt.Errorf("gauge.fullAccessKey: %w", err)
	}
	return unseal, full, nil
}

// ParseKey accepts a 32-bit key in any Go integer literal form.
func ParseKey(s string) (uint32, error) {
	u, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(u), nil
}

// DriverConfig is the bq28z610.Config this configuration describes.
func (c *Config) DriverConfig() bq28z610.Config {
	unseal, _, _ := c.Keys()
	dc := bq28z610.DefaultConfig()
	dc.Address = c.Gauge.Address
	dc.CheckSealed = c.Gauge.CheckSealed
	dc.UnsealKey = unseal
	return dc
}
