// +build !release

package main

import "time"

const (
	DEBUG                   = true
	SecretsPath             = "secrets-debug.json"
	MaxDBconnectionPoolSize = 30
	APIlistenAddress        = ":12000"
	WebListenAddress        = ":8089"
	SnapshotCacheTTL        = 5 * time.Second
	APISessionTTL           = 24 * time.Hour
	AlertSweepInterval      = 1 * time.Minute
)
