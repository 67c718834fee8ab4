// Package config provides Viper-based configuration loading for the mineshaft tools.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

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

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// GeneratorConfig holds the world and structure settings generation runs against.
type GeneratorConfig struct {
	// Seed is the world seed.
	Seed int64 `mapstructure:"seed"`
	// Type is the mineshaft type name, looked up in the type catalog.
	Type string `mapstructure:"type"`
	// SeaLevel is the world sea level.
	SeaLevel int `mapstructure:"sea_level"`
	// MinY is the lowest buildable Y.
	MinY int `mapstructure:"min_y"`
	// Height is the number of buildable layers above MinY.
	Height int `mapstructure:"height"`
	// BlockingBiomes are the biomes mineshaft pieces refuse to carve into.
	BlockingBiomes []string `mapstructure:"blocking_biomes"`
	// TypesFile is an optional YAML type catalog; empty uses the built-in types.
	TypesFile string `mapstructure:"types_file"`
}

// MaxY returns the first Y above the buildable range.
func (g GeneratorConfig) MaxY() int { return g.MinY + g.Height }

// GenServerConfig holds generation gRPC service settings.
type GenServerConfig struct {
	// GRPCHost is the bind/connect address for the generation service.
	GRPCHost string `mapstructure:"grpc_host"`
	// GRPCPort is the TCP port for the generation service.
	GRPCPort int `mapstructure:"grpc_port"`
	// MaxChunkRadius bounds the chunk coordinates a request may ask for.
	MaxChunkRadius int `mapstructure:"max_chunk_radius"`
}

// MaxChunkRadius is the largest accepted genserver.max_chunk_radius: the
// world border in chunks. Block coordinates of starts inside it fit the
// 32-bit integers starts are persisted with.
const MaxChunkRadius = 1875000

// Addr returns the "host:port" gRPC address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (g GenServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", g.GRPCHost, g.GRPCPort)
}

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Generator GeneratorConfig `mapstructure:"generator"`
	GenServer GenServerConfig `mapstructure:"genserver"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGenerator(c.Generator); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGenServer(c.GenServer); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
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
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGenerator(g GeneratorConfig) error {
	var errs []string
	if g.Type == "" {
		errs = append(errs, "generator.type must not be empty")
	}
	if g.Height < 16 || g.Height%16 != 0 {
		errs = append(errs, fmt.Sprintf("generator.height must be a positive multiple of 16, got %d", g.Height))
	}
	if g.MinY%16 != 0 {
		errs = append(errs, fmt.Sprintf("generator.min_y must be a multiple of 16, got %d", g.MinY))
	}
	if g.SeaLevel < g.MinY || g.SeaLevel >= g.MaxY() {
		errs = append(errs, fmt.Sprintf("generator.sea_level must lie in [%d, %d), got %d", g.MinY, g.MaxY(), g.SeaLevel))
	}
	for i, b := range g.BlockingBiomes {
		if b == "" {
			errs = append(errs, fmt.Sprintf("generator.blocking_biomes[%d] must not be empty", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGenServer(g GenServerConfig) error {
	var errs []string
	if g.GRPCHost == "" {
		errs = append(errs, "genserver.grpc_host must not be empty")
	}
	if g.GRPCPort < 1 || g.GRPCPort > 65535 {
		errs = append(errs, fmt.Sprintf("genserver.grpc_port must be 1-65535, got %d", g.GRPCPort))
	}
	if g.MaxChunkRadius < 1 || g.MaxChunkRadius > MaxChunkRadius {
		errs = append(errs, fmt.Sprintf("genserver.max_chunk_radius must be 1-%d, got %d", MaxChunkRadius, g.MaxChunkRadius))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
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

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with MINESHAFT_ prefix
	v.SetEnvPrefix("MINESHAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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

// Defaults returns a Viper instance holding only the default settings.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "mineshaft")
	v.SetDefault("database.password", "mineshaft")
	v.SetDefault("database.name", "mineshaft")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("generator.seed", 0)
	v.SetDefault("generator.type", "normal")
	v.SetDefault("generator.sea_level", 63)
	v.SetDefault("generator.min_y", -64)
	v.SetDefault("generator.height", 384)
	v.SetDefault("generator.blocking_biomes", []string{"deep_dark"})
	v.SetDefault("generator.types_file", "")

	v.SetDefault("genserver.grpc_host", "127.0.0.1")
	v.SetDefault("genserver.grpc_port", 50061)
	v.SetDefault("genserver.max_chunk_radius", MaxChunkRadius)
}
