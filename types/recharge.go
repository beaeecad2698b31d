package types

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
	uuid "github.com/satori/go.uuid"
)

// Recharge is a purchased validity window for a connection line.
// Its status is never stored: it is derived from EndDate when needed.
type Recharge struct {
	ID string

	// ConnectionID is empty for legacy recharges that were made directly on a gare
	ConnectionID string
	GareID       string
	LineNumber   string
	Operator     string
	OperatorType OperatorType
	PaymentType  PaymentType
	Volume       string
	Cost         float64
	StartDate    time.Time
	EndDate      time.Time
	Description  string
	CreatedBy    string
	CreatedAt    time.Time
}

// ValidCost returns the recharge cost, or zero and ErrMalformedEntity when
// the stored cost is not a finite non-negative amount
func (recharge *Recharge) ValidCost() (float64, error) {
	if math.IsNaN(recharge.Cost) || math.IsInf(recharge.Cost, 0) || recharge.Cost < 0 {
		return 0, fmt.Errorf("%w: invalid cost %v", ErrMalformedEntity, recharge.Cost)
	}
	return recharge.Cost, nil
}

// GetRecharges returns a slice with all registered recharges, newest first
func GetRecharges(node sqalx.Node) ([]*Recharge, error) {
	return getRechargesWithSelect(node, sdb.Select())
}

// GetRechargesForConnection returns the recharges made on the given connection line
func GetRechargesForConnection(node sqalx.Node, connectionID string) ([]*Recharge, error) {
	s := sdb.Select().
		Where(sq.Eq{"connection_id": connectionID})
	return getRechargesWithSelect(node, s)
}

func getRechargesWithSelect(node sqalx.Node, sbuilder sq.SelectBuilder) ([]*Recharge, error) {
	recharges := []*Recharge{}

	tx, err := node.Beginx()
	if err != nil {
		return recharges, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sbuilder.Columns("id", "connection_id", "gare_id", "line_number",
		"operator", "operator_type", "payment_type", "volume", "cost",
		"start_date", "end_date", "description", "created_by", "created_at").
		From("recharge").
		OrderBy("created_at DESC").
		RunWith(tx).Query()
	if err != nil {
		return recharges, fmt.Errorf("getRechargesWithSelect: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recharge Recharge
		var connectionID, gareID sql.NullString
		err := rows.Scan(
			&recharge.ID,
			&connectionID,
			&gareID,
			&recharge.LineNumber,
			&recharge.Operator,
			&recharge.OperatorType,
			&recharge.PaymentType,
			&recharge.Volume,
			&recharge.Cost,
			&recharge.StartDate,
			&recharge.EndDate,
			&recharge.Description,
			&recharge.CreatedBy,
			&recharge.CreatedAt)
		if err != nil {
			return recharges, fmt.Errorf("getRechargesWithSelect: %s", err)
		}
		recharge.ConnectionID = connectionID.String
		recharge.GareID = gareID.String
		recharges = append(recharges, &recharge)
	}
	if err := rows.Err(); err != nil {
		return recharges, fmt.Errorf("getRechargesWithSelect: %s", err)
	}
	return recharges, nil
}

// GetRecharge returns the Recharge with the given ID
func GetRecharge(node sqalx.Node, id string) (*Recharge, error) {
	s := sdb.Select().
		Where(sq.Eq{"id": id})
	recharges, err := getRechargesWithSelect(node, s)
	if err != nil {
		return nil, err
	}
	if len(recharges) == 0 {
		return nil, notFound("Recharge")
	}
	return recharges[0], nil
}

// NewRecharge records a recharge of the given connection line. The recharge
// inherits the line number, gare and operator of the connection, the
// connection's last recharge and expiry dates are moved to the new window and
// an expiry alert is scheduled.
func NewRecharge(node sqalx.Node, connection *Connection, recharge *Recharge) (*Alert, error) {
	tx, err := node.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if recharge.EndDate.Before(recharge.StartDate) {
		return nil, fmt.Errorf("%w: recharge ends before it starts", ErrMalformedEntity)
	}
	if _, err := recharge.ValidCost(); err != nil {
		return nil, err
	}

	if recharge.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, err
		}
		recharge.ID = id.String()
	}
	recharge.ConnectionID = connection.ID
	recharge.GareID = connection.GareID
	recharge.LineNumber = connection.LineNumber
	recharge.Operator = connection.Operator
	recharge.OperatorType = connection.OperatorType

	err = recharge.Update(tx)
	if err != nil {
		return nil, err
	}

	start, end := recharge.StartDate, recharge.EndDate
	connection.LastRechargeDate = &start
	connection.ExpiryDate = &end
	err = connection.Update(tx)
	if err != nil {
		return nil, fmt.Errorf("NewRecharge: %w", err)
	}

	alert, err := NewAlertForRecharge(recharge, recharge.CreatedAt)
	if err != nil {
		return nil, err
	}
	err = alert.Update(tx)
	if err != nil {
		return nil, err
	}
	return alert, tx.Commit()
}

// Update adds or updates the recharge
func (recharge *Recharge) Update(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = sdb.Insert("recharge").
		Columns("id", "connection_id", "gare_id", "line_number", "operator",
			"operator_type", "payment_type", "volume", "cost", "start_date",
			"end_date", "description", "created_by", "created_at").
		Values(recharge.ID, nullString(recharge.ConnectionID), nullString(recharge.GareID),
			recharge.LineNumber, recharge.Operator, recharge.OperatorType,
			recharge.PaymentType, recharge.Volume, recharge.Cost, recharge.StartDate,
			recharge.EndDate, recharge.Description, recharge.CreatedBy, recharge.CreatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET payment_type = ?, volume = ?, cost = ?,
			start_date = ?, end_date = ?, description = ?`,
			recharge.PaymentType, recharge.Volume, recharge.Cost, recharge.StartDate,
			recharge.EndDate, recharge.Description).
		RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("AddRecharge: %s", err)
	}
	return tx.Commit()
}

// Delete deletes the recharge
func (recharge *Recharge) Delete(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = sdb.Delete("recharge").
		Where(sq.Eq{"id": recharge.ID}).RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("RemoveRecharge: %s", err)
	}
	return tx.Commit()
}
