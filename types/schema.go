package types

import (
	"fmt"

	"github.com/gbl08ma/sqalx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS zone (
		id VARCHAR(36) PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS agency (
		id VARCHAR(36) PRIMARY KEY,
		name TEXT NOT NULL,
		zone_id VARCHAR(36) NOT NULL REFERENCES zone (id),
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gare (
		id VARCHAR(36) PRIMARY KEY,
		name TEXT NOT NULL,
		agency_id VARCHAR(36) NOT NULL REFERENCES agency (id),
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS connection_line (
		id VARCHAR(36) PRIMARY KEY,
		line_number TEXT NOT NULL UNIQUE,
		gare_id VARCHAR(36) NOT NULL REFERENCES gare (id),
		operator TEXT NOT NULL,
		operator_type TEXT NOT NULL,
		connection_type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		last_recharge_date TIMESTAMPTZ,
		expiry_date TIMESTAMPTZ,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS recharge (
		id VARCHAR(36) PRIMARY KEY,
		connection_id VARCHAR(36) REFERENCES connection_line (id),
		gare_id VARCHAR(36),
		line_number TEXT NOT NULL DEFAULT '',
		operator TEXT NOT NULL,
		operator_type TEXT NOT NULL,
		payment_type TEXT NOT NULL,
		volume TEXT NOT NULL,
		cost DOUBLE PRECISION NOT NULL CHECK (cost >= 0),
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_by VARCHAR(36) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS alert (
		id VARCHAR(36) PRIMARY KEY,
		recharge_id VARCHAR(36) REFERENCES recharge (id) ON DELETE CASCADE,
		line_number TEXT NOT NULL DEFAULT '',
		operator TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL,
		alert_date TIMESTAMPTZ NOT NULL,
		days_before_expiry INTEGER NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS app_user (
		id VARCHAR(36) PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		assigned_zones TEXT[] NOT NULL DEFAULT '{}',
		assigned_agencies TEXT[] NOT NULL DEFAULT '{}',
		assigned_gares TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS recharge_connection_idx ON recharge (connection_id)`,
	`CREATE INDEX IF NOT EXISTS alert_date_idx ON alert (alert_date)`,
}

// Migrate creates the tables used by this package if they do not exist yet
func Migrate(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range schema {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("Migrate: %s", err)
		}
	}
	return tx.Commit()
}
