// Package config provides Viper-based configuration loading for charforge.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CHARFORGE_TELNET_PORT.
const EnvPrefix = "CHARFORGE"

// ServerConfig holds top-level server settings.
type ServerConfig struct {
	// Mode selects which services run: "standalone" runs telnet and gRPC,
	// "telnet" and "api" run one each.
	Mode string `mapstructure:"mode"`
}

// RunsTelnet reports whether the telnet creation frontend is enabled.
func (s ServerConfig) RunsTelnet() bool {
	return s.Mode == "standalone" || s.Mode == "telnet"
}

// RunsAPI reports whether the gRPC catalog API is enabled.
func (s ServerConfig) RunsAPI() bool {
	return s.Mode == "standalone" || s.Mode == "api"
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
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds the draft store settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// DraftTTL is how long an untouched draft survives. Every save renews it.
	DraftTTL time.Duration `mapstructure:"draft_ttl"`
}

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// GRPCConfig holds the catalog API listener settings.
type GRPCConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the "host:port" listen address.
func (g GRPCConfig) Addr() string {
	return fmt.Sprintf("%s:%d", g.Host, g.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig locates the rules content tree.
type ContentConfig struct {
	// Root contains text/descriptions/...
	Root string `mapstructure:"root"`

	// ScriptInstructionLimit bounds every homebrew trait script.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Telnet   TelnetConfig   `mapstructure:"telnet"`
	GRPC     GRPCConfig     `mapstructure:"grpc"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Content  ContentConfig  `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, check := range []func() []string{
		c.validateServer,
		c.validateDatabase,
		c.validateRedis,
		c.validateListeners,
		c.validateLogging,
		c.validateContent,
	} {
		errs = append(errs, check()...)
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c Config) validateServer() []string {
	switch c.Server.Mode {
	case "standalone", "telnet", "api":
		return nil
	}
	return []string{fmt.Sprintf("server.mode must be one of [standalone, telnet, api], got %q", c.Server.Mode)}
}

func (c Config) validateDatabase() []string {
	d := c.Database
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if !validPort(d.Port) {
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
	return errs
}

func (c Config) validateRedis() []string {
	var errs []string
	if c.Redis.Addr == "" {
		errs = append(errs, "redis.addr must not be empty")
	}
	if c.Redis.DB < 0 {
		errs = append(errs, fmt.Sprintf("redis.db must be >= 0, got %d", c.Redis.DB))
	}
	if c.Redis.DraftTTL <= 0 {
		errs = append(errs, "redis.draft_ttl must be positive")
	}
	return errs
}

func (c Config) validateListeners() []string {
	var errs []string
	if !validPort(c.Telnet.Port) {
		errs = append(errs, fmt.Sprintf("telnet.port must be 1-65535, got %d", c.Telnet.Port))
	}
	if c.Telnet.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if c.Telnet.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if !validPort(c.GRPC.Port) {
		errs = append(errs, fmt.Sprintf("grpc.port must be 1-65535, got %d", c.GRPC.Port))
	}
	if c.Server.Mode == "standalone" && c.Telnet.Port == c.GRPC.Port && c.Telnet.Host == c.GRPC.Host {
		errs = append(errs, "telnet and grpc must not share a listen address")
	}
	return errs
}

func (c Config) validateLogging() []string {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", c.Logging.Format))
	}
	return errs
}

func (c Config) validateContent() []string {
	var errs []string
	if c.Content.Root == "" {
		errs = append(errs, "content.root must not be empty")
	}
	if c.Content.ScriptInstructionLimit < 1 {
		errs = append(errs, fmt.Sprintf("content.script_instruction_limit must be >= 1, got %d", c.Content.ScriptInstructionLimit))
	}
	return errs
}

func validPort(p int) bool {
	return p >= 1 && p <= 65535
}

// LoadDotEnv loads variables from a .env file in the working directory when
// one exists. Variables already set in the environment win.
//
// Postcondition: Returns nil when the file is absent.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper with defaults and CHARFORGE_ environment overrides
// applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
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
	v.SetDefault("server.mode", "standalone")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "charforge")
	v.SetDefault("database.password", "charforge")
	v.SetDefault("database.name", "charforge")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.draft_ttl", "72h")

	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "10m")
	v.SetDefault("telnet.write_timeout", "30s")

	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 50051)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("content.root", "content")
	v.SetDefault("content.script_instruction_limit", 100000)
}
