package compute

import (
	"strings"
	"time"

	"github.com/fasorail/recharges/types"
	"github.com/gbl08ma/sqalx"
	"github.com/hako/durafmt"
)

// SweepAlerts marks as sent every pending alert that is due at now and
// returns the alerts that were marked
func SweepAlerts(node sqalx.Node, now time.Time) ([]*types.Alert, error) {
	tx, err := node.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	due, err := types.GetDueAlerts(tx, now)
	if err != nil {
		return nil, err
	}
	for _, alert := range due {
		if err := alert.MarkSent(tx); err != nil {
			return nil, err
		}
		if mainLog != nil {
			mainLog.Println("Alert due:", alert.Message)
		}
	}
	return due, tx.Commit()
}

// AlertSweeper is meant to be called as a goroutine that periodically marks
// due alerts as sent, until stop is closed
func AlertSweeper(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_, err := SweepAlerts(rootSqalxNode, time.Now())
			if err != nil {
				mainLog.Println(err)
			}
		case <-stop:
			return
		}
	}
}

var frenchDurationUnits = strings.NewReplacer(
	"years", "ans", "year", "an",
	"weeks", "semaines", "week", "semaine",
	"days", "jours", "day", "jour",
	"hours", "heures", "hour", "heure",
)

// RemainingLabel describes in French how long until end, as seen at now,
// e.g. "dans 3 jours 4 heures" or "il y a 2 jours"
func RemainingLabel(end, now time.Time) string {
	if end.IsZero() {
		return NotAvailable
	}
	d := end.Sub(now)
	past := d < 0
	if past {
		d = -d
	}
	if d < time.Minute {
		return "maintenant"
	}
	label := frenchDurationUnits.Replace(durafmt.Parse(d.Truncate(time.Minute)).LimitFirstN(2).String())
	if past {
		return "il y a " + label
	}
	return "dans " + label
}
