package dispatcher

import "time"

// Config holds dispatcher tuning loaded from the environment.
type Config struct {
	// SendTimeout bounds one item from subscription lookup through the send.
	SendTimeout time.Duration `env:"DISPATCHER_SEND_TIMEOUT" envDefault:"30s"`
	// StoreTimeout bounds each write made after the send: the usage update
	// and the log entry. It starts fresh, so a slow send cannot starve them.
	StoreTimeout time.Duration `env:"DISPATCHER_STORE_TIMEOUT" envDefault:"5s"`
	// MetricsNamespace prefixes the Prometheus collectors.
	MetricsNamespace string `env:"DISPATCHER_METRICS_NAMESPACE" envDefault:"notifykit"`
}

// DefaultConfig returns the values used when no environment is loaded.
func DefaultConfig() Config {
	return Config{SendTimeout: 30 * time.Second, StoreTimeout: 5 * time.Second, MetricsNamespace: "notifykit"}
}
