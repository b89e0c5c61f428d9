package configs

import (
	"go.uber.org/zap"
)

// NewLogger builds the process logger. Production gets JSON output at info level.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
