package types

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
)

// Gare is a railway station, child of an Agency
type Gare struct {
	ID          string
	Name        string
	AgencyID    string
	Description string
	CreatedAt   time.Time
}

// GetGares returns a slice with all registered gares, newest first
func GetGares(node sqalx.Node) ([]*Gare, error) {
	return getGaresWithSelect(node, sdb.Select())
}

// GetGaresForAgency returns the gares that belong to the given agency
func GetGaresForAgency(node sqalx.Node, agencyID string) ([]*Gare, error) {
	s := sdb.Select().
		Where(sq.Eq{"agency_id": agencyID})
	return getGaresWithSelect(node, s)
}

func getGaresWithSelect(node sqalx.Node, sbuilder sq.SelectBuilder) ([]*Gare, error) {
	gares := []*Gare{}

	tx, err := node.Beginx()
	if err != nil {
		return gares, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sbuilder.Columns("id", "name", "agency_id", "description", "created_at").
		From("gare").
		OrderBy("created_at DESC").
		RunWith(tx).Query()
	if err != nil {
		return gares, fmt.Errorf("getGaresWithSelect: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var gare Gare
		err := rows.Scan(
			&gare.ID,
			&gare.Name,
			&gare.AgencyID,
			&gare.Description,
			&gare.CreatedAt)
		if err != nil {
			return gares, fmt.Errorf("getGaresWithSelect: %s", err)
		}
		gares = append(gares, &gare)
	}
	if err := rows.Err(); err != nil {
		return gares, fmt.Errorf("getGaresWithSelect: %s", err)
	}
	return gares, nil
}

// GetGare returns the Gare with the given ID
func GetGare(node sqalx.Node, id string) (*Gare, error) {
	if value, present := node.Load(getCacheKey("gare", id)); present {
		return value.(*Gare), nil
	}
	s := sdb.Select().
		Where(sq.Eq{"id": id})
	gares, err := getGaresWithSelect(node, s)
	if err != nil {
		return nil, err
	}
	if len(gares) == 0 {
		return nil, notFound("Gare")
	}
	node.Store(getCacheKey("gare", id), gares[0])
	return gares[0], nil
}

// Agency returns the agency this gare belongs to
func (gare *Gare) Agency(node sqalx.Node) (*Agency, error) {
	return GetAgency(node, gare.AgencyID)
}

// Connections returns the connection lines of this gare
func (gare *Gare) Connections(node sqalx.Node) ([]*Connection, error) {
	return GetConnectionsForGare(node, gare.ID)
}

// Update adds or updates the gare
func (gare *Gare) Update(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := GetAgency(tx, gare.AgencyID); err != nil {
		return fmt.Errorf("AddGare: %w", err)
	}

	_, err = sdb.Insert("gare").
		Columns("id", "name", "agency_id", "description", "created_at").
		Values(gare.ID, gare.Name, gare.AgencyID, gare.Description, gare.CreatedAt).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = ?, agency_id = ?, description = ?",
			gare.Name, gare.AgencyID, gare.Description).
		RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("AddGare: %s", err)
	}
	tx.Delete(getCacheKey("gare", gare.ID))
	return tx.Commit()
}

// Delete deletes the gare
func (gare *Gare) Delete(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = sdb.Delete("gare").
		Where(sq.Eq{"id": gare.ID}).RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("RemoveGare: %s", err)
	}
	tx.Delete(getCacheKey("gare", gare.ID))
	return tx.Commit()
}
