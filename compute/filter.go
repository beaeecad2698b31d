package compute

import (
	"strings"
	"time"

	"github.com/fasorail/recharges/types"
	"github.com/fasorail/recharges/utils"
	"github.com/rickb777/date"
)

// Criteria selects entities out of a collection. The zero value selects everything.
type Criteria struct {
	// Search is matched, ignoring case and accents, as a substring of the
	// searchable fields of each entity
	Search string

	// Fields maps a field name to the value it must equal exactly.
	// Empty values are ignored.
	Fields map[string]string

	// From and To bound, inclusively and by calendar day, the end date of
	// dated entities (recharge end date, connection expiry date)
	From *time.Time
	To   *time.Time
}

// Active returns whether the criteria filter anything at all
func (c Criteria) Active() bool {
	if strings.TrimSpace(c.Search) != "" || c.From != nil || c.To != nil {
		return true
	}
	for _, v := range c.Fields {
		if v != "" {
			return true
		}
	}
	return false
}

// entityView is what the matcher sees of one entity
type entityView struct {
	search []string
	fields map[string]string

	// dated entities have an end date; end is nil when it is missing
	dated bool
	end   *time.Time
}

type matcher struct {
	needle   string
	criteria Criteria
	from, to date.Date
}

func newMatcher(c Criteria) *matcher {
	m := &matcher{
		needle:   utils.NormalizeText(strings.TrimSpace(c.Search)),
		criteria: c,
	}
	if c.From != nil {
		m.from = date.NewAt(c.From.UTC())
	}
	if c.To != nil {
		m.to = date.NewAt(c.To.UTC())
	}
	return m
}

func (m *matcher) matches(v entityView) bool {
	if m.needle != "" {
		found := false
		for _, field := range v.search {
			if strings.Contains(utils.NormalizeText(field), m.needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for name, expected := range m.criteria.Fields {
		if expected == "" {
			continue
		}
		actual, ok := v.fields[name]
		if !ok || actual != expected {
			return false
		}
	}

	if v.dated && (m.criteria.From != nil || m.criteria.To != nil) {
		if v.end == nil || v.end.IsZero() {
			return false
		}
		day := date.NewAt(v.end.UTC())
		if m.criteria.From != nil && day.Sub(m.from) < 0 {
			return false
		}
		if m.criteria.To != nil && m.to.Sub(day) < 0 {
			return false
		}
	}
	return true
}

func filter[T any](items []T, c Criteria, view func(T) entityView) []T {
	result := make([]T, 0, len(items))
	m := newMatcher(c)
	for _, item := range items {
		if m.matches(view(item)) {
			result = append(result, item)
		}
	}
	return result
}

// FilterZones returns, in their original order, the zones matching c.
// Searchable: name, description. Fields: id.
func FilterZones(s *Snapshot, zones []*types.Zone, c Criteria) []*types.Zone {
	return filter(zones, c, func(z *types.Zone) entityView {
		return entityView{
			search: []string{z.Name, z.Description},
			fields: map[string]string{"id": z.ID, "zone_id": z.ID},
		}
	})
}

// FilterAgencies returns, in their original order, the agencies matching c.
// Searchable: name, description, zone name. Fields: id, zone_id.
func FilterAgencies(s *Snapshot, agencies []*types.Agency, c Criteria) []*types.Agency {
	return filter(agencies, c, func(a *types.Agency) entityView {
		return entityView{
			search: []string{a.Name, a.Description, s.ZoneName(a.ZoneID)},
			fields: map[string]string{"id": a.ID, "agency_id": a.ID, "zone_id": a.ZoneID},
		}
	})
}

// FilterGares returns, in their original order, the gares matching c.
// Searchable: name, description, agency name. Fields: id, agency_id, zone_id.
func FilterGares(s *Snapshot, gares []*types.Gare, c Criteria) []*types.Gare {
	return filter(gares, c, func(g *types.Gare) entityView {
		return entityView{
			search: []string{g.Name, g.Description, s.AgencyName(g.AgencyID)},
			fields: map[string]string{
				"id":        g.ID,
				"gare_id":   g.ID,
				"agency_id": g.AgencyID,
				"zone_id":   s.AgencyZoneID(g.AgencyID),
			},
		}
	})
}

// FilterConnections returns, in their original order, the connection lines matching c.
// Searchable: line number, operator, connection type, gare name.
// Fields: id, gare_id, agency_id, zone_id, operator, operator_type, connection_type, status.
// The date range applies to the expiry date.
func FilterConnections(s *Snapshot, connections []*types.Connection, c Criteria) []*types.Connection {
	return filter(connections, c, func(conn *types.Connection) entityView {
		agencyID := s.GareAgencyID(conn.GareID)
		return entityView{
			search: []string{conn.LineNumber, conn.Operator, conn.ConnectionType, s.GareName(conn.GareID)},
			fields: map[string]string{
				"id":              conn.ID,
				"connection_id":   conn.ID,
				"gare_id":         conn.GareID,
				"agency_id":       agencyID,
				"zone_id":         s.AgencyZoneID(agencyID),
				"operator":        conn.Operator,
				"operator_type":   string(conn.OperatorType),
				"connection_type": conn.ConnectionType,
				"status":          string(conn.Status),
			},
			dated: true,
			end:   conn.ExpiryDate,
		}
	})
}

// FilterRecharges returns, in their original order, the recharges matching c.
// Searchable: operator, volume, connection line number, gare name.
// Fields: id, connection_id, gare_id, agency_id, zone_id, operator,
// operator_type, payment_type, volume and status, the latter being derived
// from the end date as seen at now.
// The date range applies to the end date.
func FilterRecharges(s *Snapshot, recharges []*types.Recharge, c Criteria, now time.Time) []*types.Recharge {
	return filter(recharges, c, func(r *types.Recharge) entityView {
		gareID := s.RechargeGareID(r)
		agencyID := s.GareAgencyID(gareID)
		end := r.EndDate
		return entityView{
			search: []string{r.Operator, r.Volume, s.RechargeLineNumber(r), s.GareName(gareID)},
			fields: map[string]string{
				"id":            r.ID,
				"connection_id": r.ConnectionID,
				"gare_id":       gareID,
				"agency_id":     agencyID,
				"zone_id":       s.AgencyZoneID(agencyID),
				"operator":      r.Operator,
				"operator_type": string(r.OperatorType),
				"payment_type":  string(r.PaymentType),
				"volume":        r.Volume,
				"status":        string(StatusOf(r, now)),
			},
			dated: true,
			end:   &end,
		}
	})
}
