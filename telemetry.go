package main

import (
	"time"

	"github.com/fasorail/recharges/compute"
	"github.com/fasorail/recharges/types"
	statsd "gopkg.in/alexcesaro/statsd.v2"
)

// APIrequestTelemetry is a channel where something should be sent whenever an API
// request is served
var APIrequestTelemetry = make(chan interface{}, 10)

// LoginTelemetry receives the outcome of every API login attempt
var LoginTelemetry = make(chan bool, 10)

// StatsSender is meant to be called as a goroutine that handles sending telemetry
// to a statsd (or compatible) server, until stop is closed
func StatsSender(stop <-chan struct{}) {
	statsdAddress, present := secrets.Get("statsdAddress")
	statsdPrefix, present2 := secrets.Get("statsdPrefix")
	if !present || !present2 {
		// keep the channels drained so senders never fill them up
		for {
			select {
			case <-APIrequestTelemetry:
			case <-LoginTelemetry:
			case <-stop:
				return
			}
		}
	}

	c, err := statsd.New(statsd.Address(statsdAddress), statsd.Prefix(statsdPrefix))
	if err != nil {
		// If nothing is listening on the target port, an error is returned and
		// the returned client does nothing but is still usable. So we can
		// just log the error and go on.
		mainLog.Println(err)
	}
	defer c.Close()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sendGauges(c, time.Now())
		case <-APIrequestTelemetry:
			c.Increment("apicalls")
		case success := <-LoginTelemetry:
			if success {
				c.Increment("logins.success")
			} else {
				c.Increment("logins.failure")
			}
		case <-stop:
			return
		}
	}
}

// sendGauges reports the current recharge statuses, pending alerts and API sessions
func sendGauges(c *statsd.Client, now time.Time) {
	tx, err := rootSqalxNode.Beginx()
	if err != nil {
		mainLog.Println(err)
		return
	}
	defer tx.Commit() // read-only tx

	s, err := statsHandler.Snapshot(tx)
	if err != nil {
		mainLog.Println(err)
		return
	}
	alerts, err := types.GetPendingAlerts(tx)
	if err != nil {
		mainLog.Println(err)
		return
	}

	stats := compute.Dashboard(s, alerts, now)
	c.Gauge("recharges.active", stats.ActiveRecharges)
	c.Gauge("recharges.expiring_soon", stats.ExpiringRecharges)
	c.Gauge("recharges.expired", stats.ExpiredRecharges)
	c.Gauge("connections.active", stats.ActiveConnections)
	c.Gauge("connections.inactive", stats.InactiveConnections)
	c.Gauge("alerts.pending", stats.PendingAlerts)
	c.Gauge("api_sessions", sessionStore.Count())
}
