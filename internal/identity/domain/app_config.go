package domain

import "time"

// AppConfig is the singleton business configuration row.
type AppConfig struct {
	SetupComplete bool
	UpdatedAt     time.Time
}
