// Package config loads runtime settings from .env, an optional panel.yml and
// PANEL_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"procurement-tracker/internal/core"
	"procurement-tracker/internal/store"
)

// Store backends.
const (
	BackendCSV      = "csv"
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Policy   PolicyConfig   `mapstructure:"policy"`
}

type StoreConfig struct {
	Backend string            `mapstructure:"backend"`
	CSV     CSVConfig         `mapstructure:"csv"`
	Sheets  SheetsConfig      `mapstructure:"sheets"`
	Tables  map[string]string `mapstructure:"tables"`
}

type CSVConfig struct {
	Dir       string `mapstructure:"dir"`
	Encoding  string `mapstructure:"encoding"`
	Separator string `mapstructure:"separator"`
}

type SheetsConfig struct {
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type ServerConfig struct {
	Port           string `mapstructure:"port"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// ConsoleLevel applies to the interactive CLI and REPL, which log to stderr.
	ConsoleLevel string `mapstructure:"console_level"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type PolicyConfig struct {
	DeliveryGraceDays int  `mapstructure:"delivery_grace_days"`
	InvoiceDueDays    int  `mapstructure:"invoice_due_days"`
	StrictTransitions bool `mapstructure:"strict_transitions"`
}

// Core returns the derived-field policy.
func (p PolicyConfig) Core() core.Policy {
	return core.Policy{
		DeliveryGraceDays: p.DeliveryGraceDays,
		InvoiceDueDays:    p.InvoiceDueDays,
		StrictTransitions: p.StrictTransitions,
	}
}

// Delimiter returns the CSV separator rune.
func (c CSVConfig) Delimiter() rune {
	if r := []rune(c.Separator); len(r) > 0 {
		return r[0]
	}
	return ','
}

func setDefaults(v *viper.Viper) {
	defaults := core.DefaultPolicy()

	v.SetDefault("store.backend", BackendCSV)
	v.SetDefault("store.csv.dir", "data")
	v.SetDefault("store.csv.encoding", store.EncodingUTF8)
	v.SetDefault("store.csv.separator", ",")
	v.SetDefault("store.sheets.spreadsheet_id", "")
	v.SetDefault("store.sheets.credentials_file", "")
	v.SetDefault("store.tables", map[string]string{})
	v.SetDefault("database.url", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", "http://localhost:3000")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console_level", "warn")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("policy.delivery_grace_days", defaults.DeliveryGraceDays)
	v.SetDefault("policy.invoice_due_days", defaults.InvoiceDueDays)
	v.SetDefault("policy.strict_transitions", false)
}

// bindLegacyEnv keeps the unprefixed variable names working.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("database.url", "PANEL_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("openai.api_key", "PANEL_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("server.port", "PANEL_SERVER_PORT", "SERVER_PORT")
	_ = v.BindEnv("server.allowed_origins", "PANEL_SERVER_ALLOWED_ORIGINS", "ALLOWED_ORIGINS")
}

// Load reads .env (if present), then panel.yml from the search paths, then
// the environment. A missing panel.yml is not an error.
func Load(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("panel")
	v.SetConfigType("yml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("PANEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	bindLegacyEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the selected backend cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendCSV:
		if c.Store.CSV.Dir == "" {
			return errors.New("store.csv.dir is required for the csv backend")
		}
		switch strings.ToLower(c.Store.CSV.Encoding) {
		case store.EncodingUTF8, store.EncodingLatin1, "utf8", "":
		default:
			return fmt.Errorf("store.csv.encoding %q not supported", c.Store.CSV.Encoding)
		}
	case BackendSheets:
		if c.Store.Sheets.SpreadsheetID == "" {
			return errors.New("store.sheets.spreadsheet_id is required for the sheets backend")
		}
	case BackendPostgres:
		if c.Database.URL == "" {
			return errors.New("database.url (or DATABASE_URL) is required for the postgres backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	if c.Policy.DeliveryGraceDays < 0 || c.Policy.InvoiceDueDays < 0 {
		return errors.New("policy day counts must not be negative")
	}
	return nil
}
