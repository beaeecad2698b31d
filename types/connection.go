package types

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
	"github.com/lib/pq"
)

// Connection is a mobile or fibre subscription line installed at a Gare
type Connection struct {
	ID               string
	LineNumber       string
	GareID           string
	Operator         string
	OperatorType     OperatorType
	ConnectionType   string
	Status           ConnectionStatus
	LastRechargeDate *time.Time
	ExpiryDate       *time.Time
	Description      string
	CreatedAt        time.Time
}

// GetConnections returns a slice with all registered connection lines, newest first
func GetConnections(node sqalx.Node) ([]*Connection, error) {
	return getConnectionsWithSelect(node, sdb.Select())
}

// GetConnectionsForGare returns the connection lines installed at the given gare
func GetConnectionsForGare(node sqalx.Node, gareID string) ([]*Connection, error) {
	s := sdb.Select().
		Where(sq.Eq{"gare_id": gareID})
	return getConnectionsWithSelect(node, s)
}

func getConnectionsWithSelect(node sqalx.Node, sbuilder sq.SelectBuilder) ([]*Connection, error) {
	connections := []*Connection{}

	tx, err := node.Beginx()
	if err != nil {
		return connections, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sbuilder.Columns("id", "line_number", "gare_id", "operator",
		"operator_type", "connection_type", "status",
		"last_recharge_date", "expiry_date", "description", "created_at").
		From("connection_line").
		OrderBy("created_at DESC").
		RunWith(tx).Query()
	if err != nil {
		return connections, fmt.Errorf("getConnectionsWithSelect: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var connection Connection
		var lastRecharge, expiry pq.NullTime
		err := rows.Scan(
			&connection.ID,
			&connection.LineNumber,
			&connection.GareID,
			&connection.Operator,
			&connection.OperatorType,
			&connection.ConnectionType,
			&connection.Status,
			&lastRecharge,
			&expiry,
			&connection.Description,
			&connection.CreatedAt)
		if err != nil {
			return connections, fmt.Errorf("getConnectionsWithSelect: %s", err)
		}
		connection.LastRechargeDate = timePtr(lastRecharge)
		connection.ExpiryDate = timePtr(expiry)
		connections = append(connections, &connection)
	}
	if err := rows.Err(); err != nil {
		return connections, fmt.Errorf("getConnectionsWithSelect: %s", err)
	}
	return connections, nil
}

// GetConnection returns the Connection with the given ID
func GetConnection(node sqalx.Node, id string) (*Connection, error) {
	if value, present := node.Load(getCacheKey("connection", id)); present {
		return value.(*Connection), nil
	}
	s := sdb.Select().
		Where(sq.Eq{"id": id})
	connections, err := getConnectionsWithSelect(node, s)
	if err != nil {
		return nil, err
	}
	if len(connections) == 0 {
		return nil, notFound("Connection")
	}
	node.Store(getCacheKey("connection", id), connections[0])
	return connections[0], nil
}

// Gare returns the gare where this connection is installed
func (connection *Connection) Gare(node sqalx.Node) (*Gare, error) {
	return GetGare(node, connection.GareID)
}

// Recharges returns the recharges made on this connection
func (connection *Connection) Recharges(node sqalx.Node) ([]*Recharge, error) {
	return GetRechargesForConnection(node, connection.ID)
}

// Update adds or updates the connection line
func (connection *Connection) Update(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := GetGare(tx, connection.GareID); err != nil {
		return fmt.Errorf("AddConnection: %w", err)
	}

	_, err = sdb.Insert("connection_line").
		Columns("id", "line_number", "gare_id", "operator", "operator_type",
			"connection_type", "status", "last_recharge_date", "expiry_date",
			"description", "created_at").
		Values(connection.ID, connection.LineNumber, connection.GareID,
			connection.Operator, connection.OperatorType, connection.ConnectionType,
			connection.Status, nullTime(connection.LastRechargeDate),
			nullTime(connection.ExpiryDate), connection.Description, connection.CreatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET line_number = ?, gare_id = ?,
			operator = ?, operator_type = ?, connection_type = ?, status = ?,
			last_recharge_date = ?, expiry_date = ?, description = ?`,
			connection.LineNumber, connection.GareID, connection.Operator,
			connection.OperatorType, connection.ConnectionType, connection.Status,
			nullTime(connection.LastRechargeDate), nullTime(connection.ExpiryDate),
			connection.Description).
		RunWith(tx).Exec()
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateLineNumber
		}
		return fmt.Errorf("AddConnection: %s", err)
	}
	tx.Delete(getCacheKey("connection", connection.ID))
	return tx.Commit()
}

// Delete deletes the connection line together with its recharges
func (connection *Connection) Delete(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = sdb.Delete("recharge").
		Where(sq.Eq{"connection_id": connection.ID}).RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("RemoveConnection: %s", err)
	}

	_, err = sdb.Delete("connection_line").
		Where(sq.Eq{"id": connection.ID}).RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("RemoveConnection: %s", err)
	}
	tx.Delete(getCacheKey("connection", connection.ID))
	return tx.Commit()
}
