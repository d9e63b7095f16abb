// internal/discrepancy/config.go
package discrepancy

import (
	"time"

	"cauldron-reconciler/internal/models"
)

type Config struct {
	DefaultTolerance float64
	DefaultThreshold float64
	// Timeout bounds one evaluation, including the upstream fetch.
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		DefaultTolerance: models.DefaultTolerance,
		DefaultThreshold: models.DefaultThreshold,
		Timeout:          15 * time.Second,
	}
}
