package inspect

import "time"

const (
	DefaultAddr            = "127.0.0.1:7070"
	DefaultReadTimeout     = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultClientBuffer    = 64
)

// Config holds inspector settings read from the environment.
type Config struct {
	Addr            string        `env:"INSPECT_ADDR" envDefault:"127.0.0.1:7070"`
	ReadTimeout     time.Duration `env:"INSPECT_READ_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"INSPECT_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"INSPECT_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// ClientBuffer is the number of events queued per websocket client.
	ClientBuffer int `env:"INSPECT_CLIENT_BUFFER" envDefault:"64"`
	// LoadRate limits POST /load per second. Zero disables the limit.
	LoadRate  float64 `env:"INSPECT_LOAD_RATE" envDefault:"0"`
	LoadBurst int     `env:"INSPECT_LOAD_BURST" envDefault:"10"`
}

// Options converts cfg into inspector options. Zero values keep defaults.
func (cfg Config) Options() ([]Option, error) {
	if cfg.Addr == "" {
		return nil, ErrMissingAddress
	}
	opts := []Option{WithAddr(cfg.Addr)}
	if cfg.ReadTimeout > 0 {
		opts = append(opts, WithReadTimeout(cfg.ReadTimeout))
	}
	if cfg.IdleTimeout > 0 {
		opts = append(opts, WithIdleTimeout(cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout > 0 {
		opts = append(opts, WithShutdownTimeout(cfg.ShutdownTimeout))
	}
	if cfg.ClientBuffer > 0 {
		opts = append(opts, WithClientBuffer(cfg.ClientBuffer))
	}
	if cfg.LoadRate > 0 {
		opts = append(opts, WithLoadRateLimit(cfg.LoadRate, cfg.LoadBurst))
	}
	return opts, nil
}
