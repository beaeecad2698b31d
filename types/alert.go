package types

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
	uuid "github.com/satori/go.uuid"
)

// AlertLeadDays is how many days before a recharge expires its alert is due
const AlertLeadDays = 3

// Alert warns about a connection line whose recharge is about to expire
type Alert struct {
	ID               string
	RechargeID       string
	LineNumber       string
	Operator         string
	Message          string
	AlertDate        time.Time
	DaysBeforeExpiry int
	Status           AlertStatus
	CreatedAt        time.Time
}

// Dismissed returns whether the alert was dismissed by a user
func (alert *Alert) Dismissed() bool {
	return alert.Status == AlertDismissed
}

// NewAlertForRecharge prepares, without storing, the expiry alert for a recharge
func NewAlertForRecharge(recharge *Recharge, createdAt time.Time) (*Alert, error) {
	if recharge.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: recharge has no end date", ErrMalformedEntity)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return &Alert{
		ID:               id.String(),
		RechargeID:       recharge.ID,
		LineNumber:       recharge.LineNumber,
		Operator:         recharge.Operator,
		Message:          fmt.Sprintf("Ligne %s (%s) expire dans %d jours", recharge.LineNumber, recharge.Operator, AlertLeadDays),
		AlertDate:        recharge.EndDate.AddDate(0, 0, -AlertLeadDays),
		DaysBeforeExpiry: AlertLeadDays,
		Status:           AlertPending,
		CreatedAt:        createdAt,
	}, nil
}

// GetAlerts returns all alerts that were not dismissed, soonest first
func GetAlerts(node sqalx.Node) ([]*Alert, error) {
	s := sdb.Select().
		Where(sq.NotEq{"status": AlertDismissed})
	return getAlertsWithSelect(node, s)
}

// GetPendingAlerts returns the pending alerts, soonest first
func GetPendingAlerts(node sqalx.Node) ([]*Alert, error) {
	s := sdb.Select().
		Where(sq.Eq{"status": AlertPending})
	return getAlertsWithSelect(node, s)
}

// GetDueAlerts returns the pending alerts whose date is not after the given time
func GetDueAlerts(node sqalx.Node, at time.Time) ([]*Alert, error) {
	s := sdb.Select().
		Where(sq.Eq{"status": AlertPending}).
		Where(sq.LtOrEq{"alert_date": at})
	return getAlertsWithSelect(node, s)
}

func getAlertsWithSelect(node sqalx.Node, sbuilder sq.SelectBuilder) ([]*Alert, error) {
	alerts := []*Alert{}

	tx, err := node.Beginx()
	if err != nil {
		return alerts, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sbuilder.Columns("id", "recharge_id", "line_number", "operator",
		"message", "alert_date", "days_before_expiry", "status", "created_at").
		From("alert").
		OrderBy("alert_date ASC").
		RunWith(tx).Query()
	if err != nil {
		return alerts, fmt.Errorf("getAlertsWithSelect: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var alert Alert
		var rechargeID sql.NullString
		err := rows.Scan(
			&alert.ID,
			&rechargeID,
			&alert.LineNumber,
			&alert.Operator,
			&alert.Message,
			&alert.AlertDate,
			&alert.DaysBeforeExpiry,
			&alert.Status,
			&alert.CreatedAt)
		if err != nil {
			return alerts, fmt.Errorf("getAlertsWithSelect: %s", err)
		}
		alert.RechargeID = rechargeID.String
		alerts = append(alerts, &alert)
	}
	if err := rows.Err(); err != nil {
		return alerts, fmt.Errorf("getAlertsWithSelect: %s", err)
	}
	return alerts, nil
}

// GetAlert returns the Alert with the given ID
func GetAlert(node sqalx.Node, id string) (*Alert, error) {
	s := sdb.Select().
		Where(sq.Eq{"id": id})
	alerts, err := getAlertsWithSelect(node, s)
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return nil, notFound("Alert")
	}
	return alerts[0], nil
}

// Dismiss marks the alert as dismissed
func (alert *Alert) Dismiss(node sqalx.Node) error {
	alert.Status = AlertDismissed
	return alert.Update(node)
}

// MarkSent marks the alert as sent
func (alert *Alert) MarkSent(node sqalx.Node) error {
	alert.Status = AlertSent
	return alert.Update(node)
}

// Update adds or updates the alert
func (alert *Alert) Update(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = sdb.Insert("alert").
		Columns("id", "recharge_id", "line_number", "operator", "message",
			"alert_date", "days_before_expiry", "status", "created_at").
		Values(alert.ID, nullString(alert.RechargeID), alert.LineNumber, alert.Operator,
			alert.Message, alert.AlertDate, alert.DaysBeforeExpiry, alert.Status, alert.CreatedAt).
		Suffix("ON CONFLICT (id) DO UPDATE SET message = ?, alert_date = ?, status = ?",
			alert.Message, alert.AlertDate, alert.Status).
		RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("AddAlert: %s", err)
	}
	return tx.Commit()
}
