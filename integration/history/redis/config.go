package redis

import "time"

// Config holds the connection and key layout settings.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	ScanBatchSize  int           `env:"REDIS_SCAN_BATCH_SIZE" envDefault:"1000"`

	KeyPrefix string        `env:"REDIS_HISTORY_PREFIX" envDefault:"waypoint:history"`
	TTL       time.Duration `env:"REDIS_HISTORY_TTL" envDefault:"24h"`
}

// Options converts the key layout part of the config into backend options.
func (c Config) Options() []Option {
	var opts []Option
	if c.KeyPrefix != "" {
		opts = append(opts, WithKeyPrefix(c.KeyPrefix))
	}
	if c.TTL > 0 {
		opts = append(opts, WithTTL(c.TTL))
	}
	if c.ScanBatchSize > 0 {
		opts = append(opts, WithScanBatchSize(c.ScanBatchSize))
	}
	return opts
}
