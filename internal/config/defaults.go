package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL       = "https://api.quiverquant.com/beta"
	DefaultAPITimeout    = 30 * time.Second
	DefaultMaxRetries    = 3
	DefaultRetryBackoff  = 1 * time.Second
	DefaultPageSize      = 1000
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 10
	DefaultMinConns      = 2
	DefaultBatchSize     = 500
	DefaultFlushInterval = 5 * time.Second
	DefaultBufferSize    = 10000
	DefaultFetchInterval = 6 * time.Hour
	DefaultLookbackDays  = 3
	DefaultConcurrency   = 4
	DefaultFetchTimeout  = 2 * time.Minute
	DefaultLogLevel      = "info"
	DefaultLogMaxSizeMB  = 100
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
	DefaultHealthPort    = 8080
)

func (c *ProcessorConfig) applyDefaults() {
	// Quiver API defaults
	if c.Quiver.BaseURL == "" {
		c.Quiver.BaseURL = DefaultBaseURL
	}
	if c.Quiver.Timeout == 0 {
		c.Quiver.Timeout = DefaultAPITimeout
	}
	if c.Quiver.MaxRetries == 0 {
		c.Quiver.MaxRetries = DefaultMaxRetries
	}
	if c.Quiver.RetryBackoff == 0 {
		c.Quiver.RetryBackoff = DefaultRetryBackoff
	}
	if c.Quiver.PageSize == 0 {
		c.Quiver.PageSize = DefaultPageSize
	}

	// Archive defaults
	applyDBDefaults(&c.Archive.Postgres)

	// Writers defaults
	if c.Writers.BatchSize == 0 {
		c.Writers.BatchSize = DefaultBatchSize
	}
	if c.Writers.FlushInterval == 0 {
		c.Writers.FlushInterval = DefaultFlushInterval
	}
	if c.Writers.BufferSize == 0 {
		c.Writers.BufferSize = DefaultBufferSize
	}

	// Fetcher defaults
	if c.Fetcher.Interval == 0 {
		c.Fetcher.Interval = DefaultFetchInterval
	}
	if c.Fetcher.LookbackDays == 0 {
		c.Fetcher.LookbackDays = DefaultLookbackDays
	}
	if c.Fetcher.Concurrency == 0 {
		c.Fetcher.Concurrency = DefaultConcurrency
	}
	if c.Fetcher.Timeout == 0 {
		c.Fetcher.Timeout = DefaultFetchTimeout
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = DefaultLogMaxAgeDays
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
