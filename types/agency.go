package types

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
)

// Agency is a regional agency, child of a Zone
type Agency struct {
	ID          string
	Name        string
	ZoneID      string
	Description string
	CreatedAt   time.Time
}

// GetAgencies returns a slice with all registered agencies, newest first
func GetAgencies(node sqalx.Node) ([]*Agency, error) {
	return getAgenciesWithSelect(node, sdb.Select())
}

// GetAgenciesForZone returns the agencies that belong to the given zone
func GetAgenciesForZone(node sqalx.Node, zoneID string) ([]*Agency, error) {
	s := sdb.Select().
		Where(sq.Eq{"zone_id": zoneID})
	return getAgenciesWithSelect(node, s)
}

func getAgenciesWithSelect(node sqalx.Node, sbuilder sq.SelectBuilder) ([]*Agency, error) {
	agencies := []*Agency{}

	tx, err := node.Beginx()
	if err != nil {
		return agencies, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sbuilder.Columns("id", "name", "zone_id", "description", "created_at").
		From("agency").
		OrderBy("created_at DESC").
		RunWith(tx).Query()
	if err != nil {
		return agencies, fmt.Errorf("getAgenciesWithSelect: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var agency Agency
		err := rows.Scan(
			&agency.ID,
			&agency.Name,
			&agency.ZoneID,
			&agency.Description,
			&agency.CreatedAt)
		if err != nil {
			return agencies, fmt.Errorf("getAgenciesWithSelect: %s", err)
		}
		agencies = append(agencies, &agency)
	}
	if err := rows.Err(); err != nil {
		return agencies, fmt.Errorf("getAgenciesWithSelect: %s", err)
	}
	return agencies, nil
}

// GetAgency returns the Agency with the given ID
func GetAgency(node sqalx.Node, id string) (*Agency, error) {
	if value, present := node.Load(getCacheKey("agency", id)); present {
		return value.(*Agency), nil
	}
	s := sdb.Select().
		Where(sq.Eq{"id": id})
	agencies, err := getAgenciesWithSelect(node, s)
	if err != nil {
		return nil, err
	}
	if len(agencies) == 0 {
		return nil, notFound("Agency")
	}
	node.Store(getCacheKey("agency", id), agencies[0])
	return agencies[0], nil
}

// Zone returns the zone this agency belongs to
func (agency *Agency) Zone(node sqalx.Node) (*Zone, error) {
	return GetZone(node, agency.ZoneID)
}

// Gares returns the gares of this agency
func (agency *Agency) Gares(node sqalx.Node) ([]*Gare, error) {
	return GetGaresForAgency(node, agency.ID)
}

// Update adds or updates the agency
func (agency *Agency) Update(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := GetZone(tx, agency.ZoneID); err != nil {
		return fmt.Errorf("AddAgency: %w", err)
	}

	_, err = sdb.Insert("agency").
		Columns("id", "name", "zone_id", "description", "created_at").
		Values(agency.ID, agency.Name, agency.ZoneID, agency.Description, agency.CreatedAt).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = ?, zone_id = ?, description = ?",
			agency.Name, agency.ZoneID, agency.Description).
		RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("AddAgency: %s", err)
	}
	tx.Delete(getCacheKey("agency", agency.ID))
	return tx.Commit()
}

// Delete deletes the agency
func (agency *Agency) Delete(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = sdb.Delete("agency").
		Where(sq.Eq{"id": agency.ID}).RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("RemoveAgency: %s", err)
	}
	tx.Delete(getCacheKey("agency", agency.ID))
	return tx.Commit()
}
