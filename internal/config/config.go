// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Writer  WriterConfig  `mapstructure:"writer"`
	DB      DBConfig      `mapstructure:"db"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// WriterConfig governs the batch-write pipeline.
type WriterConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	QueueDepth  int `mapstructure:"queue_depth"`
	BatchSize   int `mapstructure:"batch_size"`
}

// DBConfig controls access to the relational database. An empty DSN selects
// the in-memory repository, used for local development.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// MetricsConfig toggles the optional metrics sinks. TaskMetricsEnabled
// gates the task-scoped record; when false the task context's metrics
// accessor is never touched.
type MetricsConfig struct {
	TaskMetricsEnabled bool `mapstructure:"task_metrics_enabled"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WRITEFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("writer.concurrency", 4)
	v.SetDefault("writer.queue_depth", 64)
	v.SetDefault("writer.batch_size", 500)
	v.SetDefault("db.table", "records")
	v.SetDefault("db.max_conns", 8)
	v.SetDefault("db.min_conns", 0)
	// A missing flag defaults rather than rejects.
	v.SetDefault("metrics.task_metrics_enabled", true)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Writer.Concurrency <= 0 {
		return fmt.Errorf("writer.concurrency must be > 0")
	}
	if c.Writer.QueueDepth <= 0 {
		return fmt.Errorf("writer.queue_depth must be > 0")
	}
	if c.Writer.BatchSize <= 0 {
		return fmt.Errorf("writer.batch_size must be > 0")
	}
	if c.DB.DSN != "" && c.DB.Table == "" {
		return fmt.Errorf("db.table must be set when db.dsn is set")
	}
	return nil
}
