package kit

import "go.uber.org/zap"

// NewLogger builds the production logger for a service binary. Every entry
// carries the service name so aggregated logs stay attributable.
func NewLogger(service string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Sampling = nil
	cfg.InitialFields = map[string]any{"service": service}
	l, _ := cfg.Build()
	return l
}
