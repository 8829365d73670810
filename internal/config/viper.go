// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"

	"fjacquet/budget-csv/internal/decoder"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the configuration.
const EnvPrefix = "BUDGET"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Data struct {
		Directory      string `mapstructure:"directory" yaml:"directory"`
		LedgerFile     string `mapstructure:"ledger_file" yaml:"ledger_file"`
		AccountsFile   string `mapstructure:"accounts_file" yaml:"accounts_file"`
		LearningFile   string `mapstructure:"learning_file" yaml:"learning_file"`
		CategoriesFile string `mapstructure:"categories_file" yaml:"categories_file"`
		GroupsFile     string `mapstructure:"groups_file" yaml:"groups_file"`
		WriteBOM       bool   `mapstructure:"write_bom" yaml:"write_bom"`
	} `mapstructure:"data" yaml:"data"`

	Import struct {
		Encodings                 []string `mapstructure:"encodings" yaml:"encodings"`
		HeaderScanLines           int      `mapstructure:"header_scan_lines" yaml:"header_scan_lines"`
		DescriptionColumnFallback int      `mapstructure:"description_column_fallback" yaml:"description_column_fallback"`
	} `mapstructure:"import" yaml:"import"`

	Categorization struct {
		RulesFile   string `mapstructure:"rules_file" yaml:"rules_file"`
		LearnOnEdit bool   `mapstructure:"learn_on_edit" yaml:"learn_on_edit"`
	} `mapstructure:"categorization" yaml:"categorization"`

	AI struct {
		Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
		Model          string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`
}

// InitializeConfig loads the configuration from the default locations.
func InitializeConfig() (*Config, error) {
	return InitializeConfigFromFile("")
}

// InitializeConfigFromFile loads the configuration with hierarchical
// precedence: defaults, then the config file, then BUDGET_* environment
// variables. An empty configFile searches config.yaml in $HOME/.budget-csv,
// .budget-csv and the working directory; a missing file there is not an
// error. An explicit configFile must exist.
func InitializeConfigFromFile(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.budget-csv")
		v.AddConfigPath(".budget-csv")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// The API key also comes from the unprefixed variable used by the SDK.
	if err := v.BindEnv("ai.api_key", EnvPrefix+"_AI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY environment variable: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Import.Encodings = splitList(config.Import.Encodings)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Defaults returns the built-in configuration, ignoring files and the
// environment.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("default configuration is invalid: %v", err))
	}
	return &config
}

// Validate checks the configuration, for instance after flag overrides.
func (c *Config) Validate() error {
	return validateConfig(c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("data.directory", "data")
	v.SetDefault("data.ledger_file", "ledger.csv")
	v.SetDefault("data.accounts_file", "accounts.csv")
	v.SetDefault("data.learning_file", "learning.csv")
	v.SetDefault("data.categories_file", "categories.txt")
	v.SetDefault("data.groups_file", "groups.txt")
	v.SetDefault("data.write_bom", true)

	v.SetDefault("import.encodings", []string{"utf-8", "windows-1252", "iso-8859-1"})
	v.SetDefault("import.header_scan_lines", 20)
	v.SetDefault("import.description_column_fallback", 1)

	v.SetDefault("categorization.rules_file", "rules.yaml")
	v.SetDefault("categorization.learn_on_edit", true)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 30)
}

// splitList accepts both YAML lists and the comma separated form an
// environment variable provides.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if strings.TrimSpace(config.Data.Directory) == "" {
		return fmt.Errorf("data.directory must not be empty")
	}

	if config.Import.HeaderScanLines < 1 || config.Import.HeaderScanLines > 200 {
		return fmt.Errorf("import.header_scan_lines must be between 1 and 200, got: %d", config.Import.HeaderScanLines)
	}
	if config.Import.DescriptionColumnFallback < 0 {
		return fmt.Errorf("import.description_column_fallback must not be negative, got: %d", config.Import.DescriptionColumnFallback)
	}
	if len(config.Import.Encodings) == 0 {
		return fmt.Errorf("import.encodings must name at least one encoding")
	}
	for _, label := range config.Import.Encodings {
		if _, _, err := decoder.Lookup(label); err != nil {
			return fmt.Errorf("import.encodings: %w", err)
		}
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
