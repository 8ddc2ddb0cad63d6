package shared

import (
	"os"
	"strings"
)

const EnvDemoMode = "DEMO_MODE"

// IsDemoMode checks if demo mode is enabled via environment variable.
// In demo mode the coin directory is seeded with a starter listing set.
func IsDemoMode() bool {
	demoMode := os.Getenv(EnvDemoMode)
	return strings.ToLower(demoMode) == "true" || strings.ToLower(demoMode) == "1"
}
