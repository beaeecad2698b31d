package compute

import (
	"github.com/fasorail/recharges/types"
	"github.com/gbl08ma/sqalx"
)

// Labels used in place of the name of a parent entity that cannot be found
const (
	UnknownGare   = "Gare inconnue"
	UnknownAgency = "Agence inconnue"
	UnknownZone   = "Zone inconnue"
	NotAvailable  = "N/A"
)

// Snapshot holds independently fetched collections of every entity, along
// with id indexes used to resolve relations between them. A Snapshot is not
// modified after creation and can be shared between goroutines.
type Snapshot struct {
	Zones       []*types.Zone
	Agencies    []*types.Agency
	Gares       []*types.Gare
	Connections []*types.Connection
	Recharges   []*types.Recharge

	zones       map[string]*types.Zone
	agencies    map[string]*types.Agency
	gares       map[string]*types.Gare
	connections map[string]*types.Connection
}

// NewSnapshot indexes the given collections. Nil slices are treated as empty.
func NewSnapshot(zones []*types.Zone, agencies []*types.Agency, gares []*types.Gare,
	connections []*types.Connection, recharges []*types.Recharge) *Snapshot {
	s := &Snapshot{
		Zones:       zones,
		Agencies:    agencies,
		Gares:       gares,
		Connections: connections,
		Recharges:   recharges,
		zones:       make(map[string]*types.Zone, len(zones)),
		agencies:    make(map[string]*types.Agency, len(agencies)),
		gares:       make(map[string]*types.Gare, len(gares)),
		connections: make(map[string]*types.Connection, len(connections)),
	}
	for _, z := range zones {
		s.zones[z.ID] = z
	}
	for _, a := range agencies {
		s.agencies[a.ID] = a
	}
	for _, g := range gares {
		s.gares[g.ID] = g
	}
	for _, c := range connections {
		s.connections[c.ID] = c
	}
	return s
}

// LoadSnapshot reads every collection within a single read-only transaction
func LoadSnapshot(node sqalx.Node) (*Snapshot, error) {
	tx, err := node.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Commit() // read-only tx

	zones, err := types.GetZones(tx)
	if err != nil {
		return nil, err
	}
	agencies, err := types.GetAgencies(tx)
	if err != nil {
		return nil, err
	}
	gares, err := types.GetGares(tx)
	if err != nil {
		return nil, err
	}
	connections, err := types.GetConnections(tx)
	if err != nil {
		return nil, err
	}
	recharges, err := types.GetRecharges(tx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(zones, agencies, gares, connections, recharges), nil
}

// Zone returns the zone with the given ID
func (s *Snapshot) Zone(id string) (*types.Zone, bool) {
	z, ok := s.zones[id]
	return z, ok
}

// Agency returns the agency with the given ID
func (s *Snapshot) Agency(id string) (*types.Agency, bool) {
	a, ok := s.agencies[id]
	return a, ok
}

// Gare returns the gare with the given ID
func (s *Snapshot) Gare(id string) (*types.Gare, bool) {
	g, ok := s.gares[id]
	return g, ok
}

// Connection returns the connection line with the given ID
func (s *Snapshot) Connection(id string) (*types.Connection, bool) {
	c, ok := s.connections[id]
	return c, ok
}

// RechargeGareID returns the ID of the gare a recharge belongs to, going
// through its connection line when there is one
func (s *Snapshot) RechargeGareID(r *types.Recharge) string {
	if c, ok := s.connections[r.ConnectionID]; ok {
		return c.GareID
	}
	return r.GareID
}

// RechargeLineNumber returns the line number of the connection of r
func (s *Snapshot) RechargeLineNumber(r *types.Recharge) string {
	if c, ok := s.connections[r.ConnectionID]; ok {
		return c.LineNumber
	}
	if r.LineNumber != "" {
		return r.LineNumber
	}
	return NotAvailable
}

// GareAgencyID returns the ID of the agency of the given gare, or "" if the gare is unknown
func (s *Snapshot) GareAgencyID(gareID string) string {
	if g, ok := s.gares[gareID]; ok {
		return g.AgencyID
	}
	return ""
}

// AgencyZoneID returns the ID of the zone of the given agency, or "" if the agency is unknown
func (s *Snapshot) AgencyZoneID(agencyID string) string {
	if a, ok := s.agencies[agencyID]; ok {
		return a.ZoneID
	}
	return ""
}

// GareName returns the name of the gare with the given ID, or UnknownGare
func (s *Snapshot) GareName(id string) string {
	if g, ok := s.gares[id]; ok {
		return g.Name
	}
	return UnknownGare
}

// AgencyName returns the name of the agency with the given ID, or UnknownAgency
func (s *Snapshot) AgencyName(id string) string {
	if a, ok := s.agencies[id]; ok {
		return a.Name
	}
	return UnknownAgency
}

// ZoneName returns the name of the zone with the given ID, or UnknownZone
func (s *Snapshot) ZoneName(id string) string {
	if z, ok := s.zones[id]; ok {
		return z.Name
	}
	return UnknownZone
}
