// internal/handlers/detect-daily-discrepancy/config.go
package detectdailydiscrepancy

import "cauldron-reconciler/internal/models"

type Config struct {
	DefaultTolerance float64
	DefaultThreshold float64
	MaxBodyBytes     int64
}

func LoadConfig() *Config {
	return &Config{
		DefaultTolerance: models.DefaultTolerance,
		DefaultThreshold: models.DefaultThreshold,
		MaxBodyBytes:     1 << 20,
	}
}
