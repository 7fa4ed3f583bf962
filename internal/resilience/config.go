package resilience

import (
	"time"
)

// FromSettings converts config values to a RetryConfig. Non-positive values
// keep the defaults.
func FromSettings(maxAttempts int, baseDelaySecs float64) RetryConfig {
	cfg := DefaultRetryConfig()
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if baseDelaySecs > 0 {
		cfg.BaseDelay = time.Duration(baseDelaySecs * float64(time.Second))
	}
	return cfg
}
