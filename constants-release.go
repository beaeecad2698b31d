// +build release

package main

import "time"

const (
	DEBUG                   = false
	SecretsPath             = "secrets.json"
	MaxDBconnectionPoolSize = 30
	APIlistenAddress        = ":12000"
	WebListenAddress        = ":8089"
	SnapshotCacheTTL        = 30 * time.Second
	APISessionTTL           = 24 * time.Hour
	AlertSweepInterval      = 5 * time.Minute
)
