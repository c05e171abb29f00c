package config

import "time"

// ProcessorConfig is the root configuration for a processor instance.
type ProcessorConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Quiver   QuiverConfig   `yaml:"quiver"`
	Data     DataConfig     `yaml:"data"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Writers  WritersConfig  `yaml:"writers"`
	Fetcher  FetcherConfig  `yaml:"fetcher"`
	Logging  LoggingConfig  `yaml:"logging"`
	Health   HealthConfig   `yaml:"health"`
}

// InstanceConfig identifies this processor.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// QuiverConfig holds Quiver API settings.
type QuiverConfig struct {
	BaseURL      string        `yaml:"base_url"`
	APIToken     string        `yaml:"api_token"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	PageSize     int           `yaml:"page_size"`
}

// DataConfig locates the engine's data folder and the symbol-map export.
type DataConfig struct {
	Root      string `yaml:"root"`
	SymbolMap string `yaml:"symbol_map"`
}

// ArchiveConfig holds the optional Postgres filing archive. The archive backs
// cross-run deduplication and universe-file rebuilds; the data folder alone is
// enough for a one-shot backfill.
type ArchiveConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// WritersConfig holds batch writer settings.
type WritersConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// FetcherConfig holds feed fetch settings.
type FetcherConfig struct {
	Interval     time.Duration `yaml:"interval"`
	LookbackDays int           `yaml:"lookback_days"`
	Concurrency  int           `yaml:"concurrency"`
	Timeout      time.Duration `yaml:"timeout"`
}

// LoggingConfig holds log output settings. File is optional; when set, output
// rotates there as well as stdout.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"`
}
