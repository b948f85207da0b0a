// Package config loads tablesync settings from an optional YAML file, a
// .env file and TABLESYNC_* environment variables, in increasing priority.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/goliatone/go-tablesync/components/tablesync"
	"github.com/goliatone/go-tablesync/pkg/events"
	"github.com/goliatone/go-tablesync/pkg/history"
	"github.com/goliatone/go-tablesync/pkg/sheets"
	"github.com/goliatone/go-tablesync/pkg/tables"
)

// EnvPrefix namespaces environment overrides, e.g. TABLESYNC_TABLE_TOKEN.
const EnvPrefix = "TABLESYNC"

// Backend names.
const (
	BackendBotpress = "botpress"
	BackendSheets   = "sheets"
	BackendMemory   = "memory"
)

//go:embed schema.json
var schemaJSON []byte

// Config is the full runtime configuration.
type Config struct {
	Backend   string          `mapstructure:"backend"`
	Table     TableConfig     `mapstructure:"table"`
	Sheets    sheets.Config   `mapstructure:"sheets"`
	History   HistoryConfig   `mapstructure:"history"`
	Lock      LockConfig      `mapstructure:"lock"`
	Events    EventsConfig    `mapstructure:"events"`
	Employees EmployeesConfig `mapstructure:"employees"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	AutoSync  AutoSyncConfig  `mapstructure:"auto_sync"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

// TableConfig holds the remote table service credentials.
type TableConfig struct {
	tablesync.TableSyncConfig `mapstructure:",squash"`
	Timeout                   time.Duration `mapstructure:"timeout"`
}

// HistoryConfig selects where sync records are kept.
type HistoryConfig struct {
	Store          string `mapstructure:"store"`
	history.Config `mapstructure:",squash"`
}

// LockConfig selects the sync lock implementation.
type LockConfig struct {
	Store         string        `mapstructure:"store"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// EventsConfig enables the Kafka event publisher when brokers are set.
type EventsConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// EmployeesConfig points the employees source at Postgres. An empty URL
// keeps the in-memory directory.
type EmployeesConfig struct {
	PostgresURL string `mapstructure:"postgres_url"`
}

// AnalyticsConfig points the analytics source at a remote analytics API.
// An empty BaseURL keeps the built-in fixtures.
type AnalyticsConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Range   string `mapstructure:"range"`
}

// SourcesConfig controls which data sources are registered.
type SourcesConfig struct {
	Manifest string `mapstructure:"manifest"`
	Defaults bool   `mapstructure:"defaults"`
}

// AutoSyncConfig drives the periodic clear-then-insert run. A zero interval
// disables it; empty Sources means every enabled source.
type AutoSyncConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Sources  []string      `mapstructure:"sources"`
}

// ServerConfig holds the HTTP listen address.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", BackendBotpress)
	v.SetDefault("table.bot_id", "")
	v.SetDefault("table.token", "")
	v.SetDefault("table.workspace_id", "")
	v.SetDefault("table.base_url", tablesync.DefaultBaseURL)
	v.SetDefault("table.timeout", tables.DefaultTimeout)
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.credentials_file", "")
	v.SetDefault("sheets.credentials", "")
	v.SetDefault("history.store", "memory")
	v.SetDefault("history.uri", "")
	v.SetDefault("history.database", history.DefaultDatabase)
	v.SetDefault("history.collection", history.DefaultCollection)
	v.SetDefault("history.limit", 10)
	v.SetDefault("history.timeout", 5*time.Second)
	v.SetDefault("lock.store", "memory")
	v.SetDefault("lock.redis_addr", "")
	v.SetDefault("lock.redis_password", "")
	v.SetDefault("lock.redis_db", 0)
	v.SetDefault("lock.ttl", time.Minute)
	v.SetDefault("events.brokers", []string{})
	v.SetDefault("events.topic", events.DefaultTopic)
	v.SetDefault("employees.postgres_url", "")
	v.SetDefault("analytics.base_url", "")
	v.SetDefault("analytics.api_key", "")
	v.SetDefault("analytics.range", "30d")
	v.SetDefault("sources.manifest", "")
	v.SetDefault("sources.defaults", true)
	v.SetDefault("auto_sync.interval", time.Duration(0))
	v.SetDefault("auto_sync.sources", []string{})
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	for _, file := range files {
		if file == "" {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return nil
}

// Load reads path (when non-empty) and environment overrides, then
// validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.History.Store = strings.ToLower(strings.TrimSpace(c.History.Store))
	c.Lock.Store = strings.ToLower(strings.TrimSpace(c.Lock.Store))
	c.Table.TableSyncConfig = c.Table.TableSyncConfig.WithDefaults()
	brokers := c.Events.Brokers[:0]
	for _, b := range c.Events.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	c.Events.Brokers = brokers
}

// Validate checks the configuration against the embedded schema.
func (c *Config) Validate() error {
	var schema map[string]any
	if err := json.Unmarshal(schemaJSON, &schema); err != nil {
		return fmt.Errorf("config: schema: %w", err)
	}
	if err := tablesync.ValidateDocument("config", schema, c.document()); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// document is the validated view of the configuration. Secrets are
// reduced to presence flags.
func (c *Config) document() map[string]any {
	brokers := c.Events.Brokers
	if brokers == nil {
		brokers = []string{}
	}
	return map[string]any{
		"backend": c.Backend,
		"table": map[string]any{
			"base_url":   c.Table.BaseURL,
			"timeout_ms": c.Table.Timeout.Milliseconds(),
		},
		"sheets": map[string]any{
			"spreadsheet_id":  c.Sheets.SpreadsheetID,
			"has_credentials": c.Sheets.Credentials != "" || c.Sheets.CredentialsFile != "",
		},
		"history": map[string]any{
			"store": c.History.Store,
			"uri":   c.History.URI,
			"limit": c.History.Limit,
		},
		"lock": map[string]any{
			"store":      c.Lock.Store,
			"redis_addr": c.Lock.RedisAddr,
			"ttl_ms":     c.Lock.TTL.Milliseconds(),
		},
		"events": map[string]any{
			"brokers": brokers,
			"topic":   c.Events.Topic,
		},
		"auto_sync": map[string]any{
			"interval_ms": c.AutoSync.Interval.Milliseconds(),
		},
		"log": map[string]any{
			"level":  strings.ToLower(c.Log.Level),
			"format": strings.ToLower(c.Log.Format),
		},
	}
}

// Exists reports whether path names a readable file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
