package compute

import (
	"errors"
	"fmt"
	"time"

	"github.com/fasorail/recharges/types"
)

// Status is the lifecycle state of a recharge, derived from its end date
type Status string

const (
	StatusActive       Status = "active"
	StatusExpiringSoon Status = "expiring_soon"
	StatusExpired      Status = "expired"
	// StatusUnknown is used for recharges whose end date cannot be interpreted
	StatusUnknown Status = "unknown"
)

// ExpiryHorizon is how far ahead of its end date a recharge counts as expiring soon
const ExpiryHorizon = 7 * 24 * time.Hour

// ErrMalformedEntity is returned when a date or amount of an entity cannot be interpreted
var ErrMalformedEntity = types.ErrMalformedEntity

// Classify returns the status of a recharge ending at end, as seen at now
func Classify(end, now time.Time) (Status, error) {
	if end.IsZero() {
		return StatusUnknown, fmt.Errorf("%w: missing end date", ErrMalformedEntity)
	}
	switch {
	case end.Before(now):
		return StatusExpired, nil
	case !end.After(now.Add(ExpiryHorizon)):
		return StatusExpiringSoon, nil
	default:
		return StatusActive, nil
	}
}

// ClassifyTimestamp is like Classify but takes the end date as an ISO-8601 string
func ClassifyTimestamp(end string, now time.Time) (Status, error) {
	t, err := types.ParseTimestamp(end)
	if err != nil {
		return StatusUnknown, err
	}
	return Classify(t, now)
}

// ClassifyRecharge returns the status of r as seen at now
func ClassifyRecharge(r *types.Recharge, now time.Time) (Status, error) {
	if r == nil {
		return StatusUnknown, errors.New("ClassifyRecharge: nil recharge")
	}
	return Classify(r.EndDate, now)
}

// StatusOf returns the status of r as seen at now, or StatusUnknown when it
// cannot be classified
func StatusOf(r *types.Recharge, now time.Time) Status {
	s, err := ClassifyRecharge(r, now)
	if err != nil {
		return StatusUnknown
	}
	return s
}

// Label returns the French display label for the status
func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "Actif"
	case StatusExpiringSoon:
		return "Expire bientôt"
	case StatusExpired:
		return "Expiré"
	}
	return "Inconnu"
}
