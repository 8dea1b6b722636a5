/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load,
// e.g. PERSISTENCE_STORAGE_KIND or PERSISTENCE_CONNECTIONSTRINGS_CATALOG.
const EnvPrefix = "PERSISTENCE"

// Storage kinds
const (
	KindFile     = "File"
	KindDatabase = "Database"
)

// Defaults applied when a setting is absent
const (
	DefaultKind     = KindFile
	DefaultProvider = "Json"
	DefaultLogEnv   = "dev"
	DefaultHTTPAddr = ":8080"
)

const connectionStringsEnv = EnvPrefix + "_CONNECTIONSTRINGS_"

// StorageOptions selects the backing medium. It is resolved once at startup
// and passed by value.
type StorageOptions struct {
	Kind                 string `mapstructure:"kind"`
	Provider             string `mapstructure:"provider"`
	ConnectionString     string `mapstructure:"connectionstring"`
	ConnectionStringName string `mapstructure:"connectionstringname"`
	FilePath             string `mapstructure:"filepath"`
	AutoMigrate          bool   `mapstructure:"automigrate"`
}

// IsDatabase reports whether Kind names the database path
func (o StorageOptions) IsDatabase() bool {
	return strings.EqualFold(o.Kind, KindDatabase)
}

// IsFile reports whether Kind names the file path
func (o StorageOptions) IsFile() bool {
	return strings.EqualFold(o.Kind, KindFile)
}

type LogConfig struct {
	Env string `mapstructure:"env"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// Config is the application configuration
type Config struct {
	Storage           StorageOptions    `mapstructure:"storage"`
	ConnectionStrings map[string]string `mapstructure:"connectionstrings"`
	Log               LogConfig         `mapstructure:"log"`
	HTTP              HTTPConfig        `mapstructure:"http"`
}

// Default returns the configuration used when nothing is configured
func Default() Config {
	return Config{
		Storage: StorageOptions{
			Kind:        DefaultKind,
			Provider:    DefaultProvider,
			AutoMigrate: true,
		},
		ConnectionStrings: map[string]string{},
		Log:               LogConfig{Env: DefaultLogEnv},
		HTTP:              HTTPConfig{Addr: DefaultHTTPAddr},
	}
}

// ConnectionString returns the named connection string. Names are matched
// case-insensitively.
func (c Config) ConnectionString(name string) (string, bool) {
	for key, value := range c.ConnectionStrings {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}
	return "", false
}

// ResolveConnectionString applies precedence: an explicit ConnectionString
// wins over ConnectionStringName. It fails when neither yields a value.
func (c Config) ResolveConnectionString() (string, error) {
	if c.Storage.ConnectionString != "" {
		return c.Storage.ConnectionString, nil
	}
	if c.Storage.ConnectionStringName == "" {
		return "", fmt.Errorf("neither Storage.ConnectionString nor Storage.ConnectionStringName is set")
	}
	conn, ok := c.ConnectionString(c.Storage.ConnectionStringName)
	if !ok || conn == "" {
		return "", fmt.Errorf("connection string %q is not defined in ConnectionStrings", c.Storage.ConnectionStringName)
	}
	return conn, nil
}

// Options controls where Load looks for configuration
type Options struct {
	// File is an optional JSON, YAML or TOML configuration file
	File string

	// DotEnv lists .env files to load; missing files are ignored.
	// Variables already present in the environment take precedence.
	DotEnv []string
}

// Load reads configuration from defaults, an optional file, .env files and
// the environment, in increasing order of precedence.
func Load(opts Options) (Config, error) {
	for _, path := range opts.DotEnv {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", opts.File, err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.ConnectionStrings == nil {
		cfg.ConnectionStrings = map[string]string{}
	}

	// Viper cannot enumerate map entries supplied only through the environment
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || len(key) <= len(connectionStringsEnv) || !strings.EqualFold(key[:len(connectionStringsEnv)], connectionStringsEnv) {
			continue
		}
		cfg.ConnectionStrings[strings.ToLower(key[len(connectionStringsEnv):])] = value
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.kind", DefaultKind)
	v.SetDefault("storage.provider", DefaultProvider)
	v.SetDefault("storage.connectionstring", "")
	v.SetDefault("storage.connectionstringname", "")
	v.SetDefault("storage.filepath", "")
	v.SetDefault("storage.automigrate", true)
	v.SetDefault("log.env", DefaultLogEnv)
	v.SetDefault("http.addr", DefaultHTTPAddr)
}

func (c Config) validate() error {
	if !c.Storage.IsFile() && !c.Storage.IsDatabase() {
		return fmt.Errorf("Storage.Kind %q must be %s or %s", c.Storage.Kind, KindFile, KindDatabase)
	}
	if strings.TrimSpace(c.Storage.Provider) == "" {
		return fmt.Errorf("Storage.Provider is required")
	}
	return nil
}
