// Package config provides Viper-based configuration loading for the
// gridroom server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the game listener settings.
type ServerConfig struct {
	// Host is the bind address for the TCP game listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the game listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-frame read deadline for game connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-frame write deadline for game connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// WSEnabled turns on the websocket listener for browser clients.
	WSEnabled bool `mapstructure:"ws_enabled"`
	// WSPort is the TCP port for the websocket listener.
	WSPort int `mapstructure:"ws_port"`
}

// Addr returns the "host:port" game listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// WSAddr returns the "host:port" websocket listen address.
func (s ServerConfig) WSAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.WSPort)
}

// SimulationConfig holds tick-loop and room settings.
type SimulationConfig struct {
	// TickInterval is the fixed simulation period.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// GridSize is the side length of the snapshot grid.
	GridSize int `mapstructure:"grid_size"`
	// RoomsFile is an optional YAML file of rooms to pre-create.
	RoomsFile string `mapstructure:"rooms_file"`
}

// AdminConfig holds the admin/introspection HTTP endpoint settings.
type AdminConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// Addr returns the "host:port" admin listen address.
func (a AdminConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File, when set, routes logs to a size-rotated file instead of stderr.
	File string `mapstructure:"file"`
}

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateAdmin(c.Admin); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if s.WSEnabled {
		if s.WSPort < 1 || s.WSPort > 65535 {
			errs = append(errs, fmt.Sprintf("server.ws_port must be 1-65535, got %d", s.WSPort))
		}
		if s.WSPort == s.Port {
			errs = append(errs, "server.ws_port must differ from server.port")
		}
	}
	if s.ReadTimeout < 0 {
		errs = append(errs, "server.read_timeout must not be negative")
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, "server.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.tick_interval must be positive, got %s", s.TickInterval))
	}
	if s.GridSize < 1 {
		errs = append(errs, fmt.Sprintf("simulation.grid_size must be >= 1, got %d", s.GridSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateAdmin(a AdminConfig) error {
	if !a.Enabled {
		return nil
	}
	if a.Port < 1 || a.Port > 65535 {
		return fmt.Errorf("admin.port must be 1-65535, got %d", a.Port)
	}
	return nil
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

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with GRIDROOM_ prefix
	v.SetEnvPrefix("GRIDROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
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
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 1234)
	v.SetDefault("server.read_timeout", "5m")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.ws_enabled", false)
	v.SetDefault("server.ws_port", 1235)

	v.SetDefault("simulation.tick_interval", "50ms")
	v.SetDefault("simulation.grid_size", 9)
	v.SetDefault("simulation.rooms_file", "")

	v.SetDefault("admin.enabled", false)
	v.SetDefault("admin.host", "127.0.0.1")
	v.SetDefault("admin.port", 8099)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")
}
