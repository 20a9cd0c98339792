// Package config loads application settings from an optional YAML file and
// UIPILOT_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Engine   EngineConfig   `mapstructure:"engine" yaml:"engine"`
	Resolver ResolverConfig `mapstructure:"resolver" yaml:"resolver"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Recorder RecorderConfig `mapstructure:"recorder" yaml:"recorder"`
}

// LoggerConfig controls log output and rotation.
type LoggerConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"` // console or json
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// EngineConfig tunes interpreter timing and failure capture.
type EngineConfig struct {
	DefaultTimeout time.Duration `mapstructure:"default_timeout" yaml:"default_timeout"`
	UserTimeout    time.Duration `mapstructure:"user_timeout" yaml:"user_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	TypeDelay      time.Duration `mapstructure:"type_delay" yaml:"type_delay"`
	SnapshotDir    string        `mapstructure:"snapshot_dir" yaml:"snapshot_dir"`
}

// ResolverConfig tunes target resolution heuristics.
type ResolverConfig struct {
	BrowserSignatures []string      `mapstructure:"browser_signatures" yaml:"browser_signatures"`
	DialogKeywords    []string      `mapstructure:"dialog_keywords" yaml:"dialog_keywords"`
	DialogSettleDelay time.Duration `mapstructure:"dialog_settle_delay" yaml:"dialog_settle_delay"`
	AddressBarOffset  int           `mapstructure:"address_bar_offset" yaml:"address_bar_offset"`
}

// StoreConfig locates the session database.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// RecorderConfig locates the external UI recorder.
type RecorderConfig struct {
	Bin        string   `mapstructure:"bin" yaml:"bin"`
	Args       []string `mapstructure:"args" yaml:"args"`
	BufferSize int      `mapstructure:"buffer_size" yaml:"buffer_size"`
}

// SetDefaults installs the stock values on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	v.SetDefault("engine.default_timeout", "30s")
	v.SetDefault("engine.user_timeout", "5m")
	v.SetDefault("engine.poll_interval", "500ms")
	v.SetDefault("engine.type_delay", "10ms")
	v.SetDefault("engine.snapshot_dir", "")

	v.SetDefault("resolver.browser_signatures", []string{"chrome", "edge", "firefox"})
	v.SetDefault("resolver.dialog_keywords", []string{"profile", "open", "sign", "start"})
	v.SetDefault("resolver.dialog_settle_delay", "800ms")
	v.SetDefault("resolver.address_bar_offset", 80)

	v.SetDefault("store.path", "uipilot.db")

	v.SetDefault("recorder.bin", "")
	v.SetDefault("recorder.buffer_size", 1024)
}

// Load reads configuration from path (optional; empty means defaults and
// environment only) and the UIPILOT_ environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("UIPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration with no file or environment applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("unmarshal default config: %v", err))
	}
	return &cfg
}
