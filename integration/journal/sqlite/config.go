package sqlite

import "time"

// Config holds the journal settings.
type Config struct {
	Path        string        `env:"JOURNAL_SQLITE_PATH" envDefault:"waypoint-journal.db"`
	BusyTimeout time.Duration `env:"JOURNAL_SQLITE_BUSY_TIMEOUT" envDefault:"5s"`
	Retention   time.Duration `env:"JOURNAL_RETENTION" envDefault:"720h"`
}

// Options converts the config into journal options.
func (c Config) Options() []Option {
	var opts []Option
	if c.BusyTimeout > 0 {
		opts = append(opts, WithBusyTimeout(c.BusyTimeout))
	}
	if c.Retention > 0 {
		opts = append(opts, WithRetention(c.Retention))
	}
	return opts
}
