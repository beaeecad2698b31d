package compute

import (
	"github.com/fasorail/recharges/types"
	"github.com/thoas/go-funk"
)

// Visibility is the part of the hierarchy a user is allowed to see
type Visibility struct {
	all      bool
	zones    map[string]bool
	agencies map[string]bool
	gares    map[string]bool
}

// VisibilityFor computes what user may see in s.
// Super admins see everything. Zone admins see their assigned zones, agencies
// and gares with everything below them. Field agents see their assigned
// agencies and gares with everything below them. Parents of visible entities
// are visible too, so that their names can be shown.
func VisibilityFor(user *types.User, s *Snapshot) Visibility {
	v := Visibility{
		zones:    make(map[string]bool),
		agencies: make(map[string]bool),
		gares:    make(map[string]bool),
	}
	if user == nil {
		return v
	}
	if user.Role == types.RoleSuperAdmin {
		v.all = true
		return v
	}

	zoneAdmin := user.Role == types.RoleZoneAdmin
	granted := make(map[string]bool)
	for _, a := range s.Agencies {
		if funk.ContainsString(user.AssignedAgencies, a.ID) ||
			(zoneAdmin && funk.ContainsString(user.AssignedZones, a.ZoneID)) {
			granted[a.ID] = true
			v.agencies[a.ID] = true
		}
	}
	for _, g := range s.Gares {
		if granted[g.AgencyID] || funk.ContainsString(user.AssignedGares, g.ID) {
			v.gares[g.ID] = true
			v.agencies[g.AgencyID] = true
		}
	}
	if zoneAdmin {
		for _, z := range user.AssignedZones {
			v.zones[z] = true
		}
	}
	for agencyID := range v.agencies {
		if zoneID := s.AgencyZoneID(agencyID); zoneID != "" {
			v.zones[zoneID] = true
		}
	}
	return v
}

// All returns whether everything is visible
func (v Visibility) All() bool {
	return v.all
}

// Zone returns whether the zone with the given ID is visible
func (v Visibility) Zone(id string) bool {
	return v.all || v.zones[id]
}

// Agency returns whether the agency with the given ID is visible
func (v Visibility) Agency(id string) bool {
	return v.all || v.agencies[id]
}

// Gare returns whether the gare with the given ID is visible
func (v Visibility) Gare(id string) bool {
	return v.all || v.gares[id]
}

// Scope returns whether the report scope of the given kind and ID is visible
func (v Visibility) Scope(kind ScopeKind, id string) bool {
	switch kind {
	case ScopeZone:
		return v.Zone(id)
	case ScopeAgency:
		return v.Agency(id)
	case ScopeGare:
		return v.Gare(id)
	}
	return false
}

// Zones returns the visible zones, in their original order
func (v Visibility) Zones(zones []*types.Zone) []*types.Zone {
	return keep(zones, func(z *types.Zone) bool { return v.Zone(z.ID) })
}

// Agencies returns the visible agencies, in their original order
func (v Visibility) Agencies(agencies []*types.Agency) []*types.Agency {
	return keep(agencies, func(a *types.Agency) bool { return v.Agency(a.ID) })
}

// Gares returns the visible gares, in their original order
func (v Visibility) Gares(gares []*types.Gare) []*types.Gare {
	return keep(gares, func(g *types.Gare) bool { return v.Gare(g.ID) })
}

// Connections returns the connection lines of visible gares, in their original order
func (v Visibility) Connections(connections []*types.Connection) []*types.Connection {
	return keep(connections, func(c *types.Connection) bool { return v.Gare(c.GareID) })
}

// Recharges returns the recharges of visible gares, in their original order
func (v Visibility) Recharges(s *Snapshot, recharges []*types.Recharge) []*types.Recharge {
	return keep(recharges, func(r *types.Recharge) bool { return v.Gare(s.RechargeGareID(r)) })
}

// Snapshot returns the part of s that is visible
func (v Visibility) Snapshot(s *Snapshot) *Snapshot {
	if v.all {
		return s
	}
	return NewSnapshot(v.Zones(s.Zones), v.Agencies(s.Agencies), v.Gares(s.Gares),
		v.Connections(s.Connections), v.Recharges(s, s.Recharges))
}

// Alerts returns, in their original order, the alerts about visible
// recharges. Alerts whose recharge is gone are only visible when everything is.
func (v Visibility) Alerts(s *Snapshot, alerts []*types.Alert) []*types.Alert {
	if v.all {
		return alerts
	}
	visible := make(map[string]bool)
	for _, r := range v.Recharges(s, s.Recharges) {
		visible[r.ID] = true
	}
	return keep(alerts, func(a *types.Alert) bool { return visible[a.RechargeID] })
}

func keep[T any](items []T, pred func(T) bool) []T {
	if items == nil {
		return nil
	}
	result := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			result = append(result, item)
		}
	}
	return result
}
