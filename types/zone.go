package types

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
)

// Zone is the top level of the organisational hierarchy
type Zone struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// GetZones returns a slice with all registered zones, newest first
func GetZones(node sqalx.Node) ([]*Zone, error) {
	return getZonesWithSelect(node, sdb.Select())
}

func getZonesWithSelect(node sqalx.Node, sbuilder sq.SelectBuilder) ([]*Zone, error) {
	zones := []*Zone{}

	tx, err := node.Beginx()
	if err != nil {
		return zones, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sbuilder.Columns("id", "name", "description", "created_at").
		From("zone").
		OrderBy("created_at DESC").
		RunWith(tx).Query()
	if err != nil {
		return zones, fmt.Errorf("getZonesWithSelect: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var zone Zone
		err := rows.Scan(
			&zone.ID,
			&zone.Name,
			&zone.Description,
			&zone.CreatedAt)
		if err != nil {
			return zones, fmt.Errorf("getZonesWithSelect: %s", err)
		}
		zones = append(zones, &zone)
	}
	if err := rows.Err(); err != nil {
		return zones, fmt.Errorf("getZonesWithSelect: %s", err)
	}
	return zones, nil
}

// GetZone returns the Zone with the given ID
func GetZone(node sqalx.Node, id string) (*Zone, error) {
	if value, present := node.Load(getCacheKey("zone", id)); present {
		return value.(*Zone), nil
	}
	s := sdb.Select().
		Where(sq.Eq{"id": id})
	zones, err := getZonesWithSelect(node, s)
	if err != nil {
		return nil, err
	}
	if len(zones) == 0 {
		return nil, notFound("Zone")
	}
	node.Store(getCacheKey("zone", id), zones[0])
	return zones[0], nil
}

// Agencies returns the agencies of this zone
func (zone *Zone) Agencies(node sqalx.Node) ([]*Agency, error) {
	return GetAgenciesForZone(node, zone.ID)
}

// Update adds or updates the zone
func (zone *Zone) Update(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = sdb.Insert("zone").
		Columns("id", "name", "description", "created_at").
		Values(zone.ID, zone.Name, zone.Description, zone.CreatedAt).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = ?, description = ?",
			zone.Name, zone.Description).
		RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("AddZone: %s", err)
	}
	tx.Delete(getCacheKey("zone", zone.ID))
	return tx.Commit()
}

// Delete deletes the zone
func (zone *Zone) Delete(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = sdb.Delete("zone").
		Where(sq.Eq{"id": zone.ID}).RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("RemoveZone: %s", err)
	}
	tx.Delete(getCacheKey("zone", zone.ID))
	return tx.Commit()
}
