package config

import (
	"strings"
)

// MissingError lists required environment variables that were empty.
type MissingError struct {
	Names []string
}

func (e *MissingError) Error() string {
	return "missing required env " + strings.Join(e.Names, ", ")
}

// RequireServer reports every setting the HTTP server cannot start without.
func (c Config) RequireServer() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(c.TrackingSecret) == 0 {
		missing = append(missing, "ORDER_TRACKING_SECRET")
	}
	if len(missing) > 0 {
		return &MissingError{Names: missing}
	}
	return nil
}
