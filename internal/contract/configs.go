package contract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/passagehealth/passage/core"
	"github.com/passagehealth/passage/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 1
	DefaultListen    = ":9000"
	DefaultJWTIssuer = "passage"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

var validLogLevels = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "error": {}}

var validLogFormats = map[string]struct{}{"console": {}, "json": {}}

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	Policy     string
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	UseColors  bool // Enable colored labels in table output

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	Operator string
	Save     bool

	Listen    string
	JWTSecret string // Empty disables token checks on the HTTP API
	JWTIssuer string

	LogLevel  string
	LogFormat string

	// CustomPolicies are validated policies from the config file, registered after the presets.
	CustomPolicies []core.Policy
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Policy         string `mapstructure:"policy"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Color          string `mapstructure:"color"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	Operator       string `mapstructure:"operator"`
	LogLevel       string `mapstructure:"log-level"`
	LogFormat      string `mapstructure:"log-format"`

	// --- Fields from assessCmd.Flags() ---
	Save bool `mapstructure:"save"`

	// --- Fields from serveCmd.Flags() ---
	Listen    string `mapstructure:"listen"`
	JWTSecret string `mapstructure:"jwt-secret"`
	JWTIssuer string `mapstructure:"jwt-issuer"`

	// --- Custom policies from config file ---
	Policies []core.PolicyRaw `mapstructure:"policies"`
}

// Engine builds the risk engine from the presets, the custom policies and the selected default.
func (c *Config) Engine() (*core.Engine, error) {
	registry, err := core.NewRegistry(c.CustomPolicies...)
	if err != nil {
		return nil, err
	}
	return core.NewEngine(registry, c.Policy)
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateStoreConfig(cfg, input); err != nil {
		return err
	}
	if err := processServerConfig(cfg, input); err != nil {
		return err
	}
	return processCustomPolicies(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of store connection strings.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.CSVBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
		if !strings.Contains(connStr, "parseTime=true") {
			return fmt.Errorf("MySQL connection string must set parseTime=true so timestamps scan as time values")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
			u, err := url.Parse(connStr)
			if err != nil {
				return fmt.Errorf("invalid PostgreSQL connection URL: %w", err)
			}
			if u.Host == "" {
				return fmt.Errorf("PostgreSQL connection URL must contain a host")
			}
			if strings.Trim(u.Path, "/") == "" {
				return fmt.Errorf("PostgreSQL connection URL must end with /dbname")
			}
			return nil
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the presentation and logging fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Save = input.Save
	cfg.Policy = strings.TrimSpace(input.Policy)

	cfg.Operator = strings.TrimSpace(input.Operator)
	if cfg.Operator == "" {
		cfg.Operator = DefaultOperator()
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	cfg.LogLevel = strings.ToLower(input.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if _, ok := validLogLevels[cfg.LogLevel]; !ok {
		return fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", input.LogLevel)
	}

	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if _, ok := validLogFormats[cfg.LogFormat]; !ok {
		return fmt.Errorf("invalid log format '%s'. must be console, json", input.LogFormat)
	}
	return nil
}

// validateStoreConfig validates the record store backend and resolves default file locations.
func validateStoreConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, csv, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	if cfg.StoreDBConnect == "" {
		switch cfg.StoreBackend {
		case schema.SQLiteBackend:
			cfg.StoreDBConnect = GetRecordsDBFilePath()
		case schema.CSVBackend:
			cfg.StoreDBConnect = GetRecordsCSVFilePath()
		}
	}
	return nil
}

// processServerConfig handles the HTTP listener and token settings.
func processServerConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.Listen = strings.TrimSpace(input.Listen)
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if !strings.Contains(cfg.Listen, ":") {
		return fmt.Errorf("listen address '%s' must be host:port or :port", input.Listen)
	}

	cfg.JWTSecret = input.JWTSecret
	cfg.JWTIssuer = strings.TrimSpace(input.JWTIssuer)
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = DefaultJWTIssuer
	}
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 16 {
		return fmt.Errorf("jwt-secret must be at least 16 bytes (received %d)", len(cfg.JWTSecret))
	}
	return nil
}

// processCustomPolicies converts the raw policies and checks the selected policy exists.
func processCustomPolicies(cfg *Config, input *ConfigRawInput) error {
	policies, err := core.LoadPolicies(input.Policies)
	if err != nil {
		return err
	}
	cfg.CustomPolicies = policies

	if _, err := cfg.Engine(); err != nil {
		return fmt.Errorf("invalid policy configuration: %w", err)
	}
	return nil
}
