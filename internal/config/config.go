package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Catalogue CatalogueConfig `yaml:"catalogue" mapstructure:"catalogue"`
	Database  DatabaseConfig  `yaml:"database" mapstructure:"database"`
	Documents DocumentsConfig `yaml:"documents" mapstructure:"documents"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the local working store (imports, audit trail,
// review queue).
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// CatalogueConfig configures the manufacturer catalogue source: a directory
// of extraction JSON files produced by the catalogue scraper.
type CatalogueConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// DatabaseConfig configures the legacy store database source.
type DatabaseConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// DocumentsConfig configures the supplier document drop directory where
// fetched price sheets land.
type DocumentsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// BatchConfig configures batch consolidation.
type BatchConfig struct {
	MaxConcurrentSKUs int     `yaml:"max_concurrent_skus" mapstructure:"max_concurrent_skus"`
	SourceRateLimit   float64 `yaml:"source_rate_limit" mapstructure:"source_rate_limit"`
}

// AnthropicConfig holds Anthropic API settings for description drafting.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "catalog.db")
	v.SetDefault("catalogue.dir", "catalogue_extractions")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "store.db")
	v.SetDefault("documents.dir", "documents")
	v.SetDefault("batch.max_concurrent_skus", 4)
	v.SetDefault("batch.source_rate_limit", 0)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
