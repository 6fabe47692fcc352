package api

import "time"

type Config struct {
	MaxBodyBytes  int64         `env:"API_MAX_BODY_BYTES" envDefault:"65536"`
	HealthTimeout time.Duration `env:"API_HEALTH_TIMEOUT" envDefault:"2s"`
	MaxPageSize   int           `env:"API_MAX_PAGE_SIZE" envDefault:"100"`
}

func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:  64 << 10,
		HealthTimeout: 2 * time.Second,
		MaxPageSize:   100,
	}
}
