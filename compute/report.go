package compute

import (
	"fmt"
	"sort"
	"time"

	"github.com/fasorail/recharges/types"
	"github.com/thoas/go-funk"
)

// ScopeKind is the kind of entity a report is about
type ScopeKind string

const (
	ScopeZone   ScopeKind = "zone"
	ScopeAgency ScopeKind = "agency"
	ScopeGare   ScopeKind = "gare"
)

// ParseScopeKind returns the ScopeKind named by s
func ParseScopeKind(s string) (ScopeKind, bool) {
	switch k := ScopeKind(s); k {
	case ScopeZone, ScopeAgency, ScopeGare:
		return k, true
	}
	return "", false
}

// Label returns the French name of the scope kind
func (k ScopeKind) Label() string {
	switch k {
	case ScopeZone:
		return "Zone"
	case ScopeAgency:
		return "Agence"
	case ScopeGare:
		return "Gare"
	}
	return string(k)
}

// GroupStats summarises the recharges of one group (operator, gare or agency)
type GroupStats struct {
	ID          string  `msgpack:"id,omitempty" json:"id,omitempty"`
	Name        string  `msgpack:"name" json:"name"`
	Count       int     `msgpack:"count" json:"count"`
	ActiveCount int     `msgpack:"active_count" json:"active_count"`
	TotalCost   float64 `msgpack:"total_cost" json:"total_cost"`

	// Gares is the number of gares of an agency, only set in agency stats
	Gares int `msgpack:"gares,omitempty" json:"gares,omitempty"`
}

// Statistics summarises the recharges in the scope of a report
type Statistics struct {
	TotalRecharges    int     `msgpack:"total_recharges" json:"total_recharges"`
	ActiveRecharges   int     `msgpack:"active_recharges" json:"active_recharges"`
	ExpiringRecharges int     `msgpack:"expiring_recharges" json:"expiring_recharges"`
	ExpiredRecharges  int     `msgpack:"expired_recharges" json:"expired_recharges"`
	UnknownRecharges  int     `msgpack:"unknown_recharges" json:"unknown_recharges"`
	TotalCost         float64 `msgpack:"total_cost" json:"total_cost"`

	OperatorStats map[string]*GroupStats `msgpack:"operator_stats" json:"operator_stats"`

	// GareStats is keyed by gare ID, for agency and zone scopes
	GareStats map[string]*GroupStats `msgpack:"gare_stats,omitempty" json:"gare_stats,omitempty"`

	// AgencyStats is keyed by agency ID, for zone scopes
	AgencyStats map[string]*GroupStats `msgpack:"agency_stats,omitempty" json:"agency_stats,omitempty"`

	TotalGares    int `msgpack:"total_gares,omitempty" json:"total_gares,omitempty"`
	TotalAgencies int `msgpack:"total_agencies,omitempty" json:"total_agencies,omitempty"`
}

// MonthlyStats summarises the recharges started in one calendar month
type MonthlyStats struct {
	Year        int        `msgpack:"year" json:"year"`
	Month       time.Month `msgpack:"month" json:"month"`
	Count       int        `msgpack:"count" json:"count"`
	TotalCost   float64    `msgpack:"total_cost" json:"total_cost"`
	AverageCost float64    `msgpack:"average_cost" json:"average_cost"`

	// Volumes holds up to three distinct volumes, in order of appearance
	Volumes []string `msgpack:"volumes" json:"volumes"`
}

// Report is the statistics of one zone, agency or gare at a point in time
type Report struct {
	Kind        ScopeKind         `msgpack:"type" json:"type"`
	EntityID    string            `msgpack:"entity_id" json:"entity_id"`
	EntityName  string            `msgpack:"entity_name" json:"entity_name"`
	Statistics  Statistics        `msgpack:"statistics" json:"statistics"`
	Monthly     []MonthlyStats    `msgpack:"monthly" json:"monthly"`
	Recharges   []*types.Recharge `msgpack:"-" json:"-"`
	GeneratedAt time.Time         `msgpack:"generated_at" json:"generated_at"`
}

// ScopedRecharges returns, in their original order, the recharges of the
// snapshot that belong to the given zone, agency or gare
func ScopedRecharges(s *Snapshot, kind ScopeKind, id string) []*types.Recharge {
	scoped := []*types.Recharge{}
	for _, r := range s.Recharges {
		if inScope(s, kind, id, s.RechargeGareID(r)) {
			scoped = append(scoped, r)
		}
	}
	return scoped
}

func inScope(s *Snapshot, kind ScopeKind, id, gareID string) bool {
	switch kind {
	case ScopeGare:
		return gareID == id
	case ScopeAgency:
		return s.GareAgencyID(gareID) == id
	case ScopeZone:
		return s.AgencyZoneID(s.GareAgencyID(gareID)) == id
	}
	return false
}

// Aggregate computes the statistics of recharges, which are expected to be
// the recharges in the scope of the given kind and entity ID
func Aggregate(s *Snapshot, kind ScopeKind, id string, recharges []*types.Recharge, now time.Time) Statistics {
	stats := Statistics{
		OperatorStats: make(map[string]*GroupStats),
	}

	if kind == ScopeAgency || kind == ScopeZone {
		stats.GareStats = make(map[string]*GroupStats)
		for _, g := range s.Gares {
			if inScope(s, kind, id, g.ID) {
				stats.GareStats[g.ID] = &GroupStats{ID: g.ID, Name: g.Name}
				stats.TotalGares++
			}
		}
	}
	if kind == ScopeZone {
		stats.AgencyStats = make(map[string]*GroupStats)
		for _, a := range s.Agencies {
			if a.ZoneID == id {
				stats.AgencyStats[a.ID] = &GroupStats{ID: a.ID, Name: a.Name}
				stats.TotalAgencies++
			}
		}
		for _, g := range s.Gares {
			if a, ok := stats.AgencyStats[g.AgencyID]; ok {
				a.Gares++
			}
		}
	}

	for _, r := range recharges {
		status := StatusOf(r, now)
		cost, _ := r.ValidCost()

		stats.TotalRecharges++
		stats.TotalCost += cost
		switch status {
		case StatusActive:
			stats.ActiveRecharges++
		case StatusExpiringSoon:
			stats.ExpiringRecharges++
		case StatusExpired:
			stats.ExpiredRecharges++
		default:
			stats.UnknownRecharges++
		}

		op, ok := stats.OperatorStats[r.Operator]
		if !ok {
			op = &GroupStats{Name: r.Operator}
			stats.OperatorStats[r.Operator] = op
		}
		op.add(status, cost)

		if stats.GareStats != nil {
			gareID := s.RechargeGareID(r)
			g, ok := stats.GareStats[gareID]
			if !ok {
				g = &GroupStats{ID: gareID, Name: s.GareName(gareID)}
				stats.GareStats[gareID] = g
			}
			g.add(status, cost)
		}
		if stats.AgencyStats != nil {
			agencyID := s.GareAgencyID(s.RechargeGareID(r))
			if a, ok := stats.AgencyStats[agencyID]; ok {
				a.add(status, cost)
			}
		}
	}
	return stats
}

func (g *GroupStats) add(status Status, cost float64) {
	g.Count++
	g.TotalCost += cost
	if status == StatusActive {
		g.ActiveCount++
	}
}

// MonthlyBreakdown groups recharges by the calendar month (UTC) of their
// start date, in chronological order. Recharges without a start date are left out.
func MonthlyBreakdown(recharges []*types.Recharge) []MonthlyStats {
	type key struct {
		year  int
		month time.Month
	}
	byMonth := make(map[key]*MonthlyStats)
	for _, r := range recharges {
		if r.StartDate.IsZero() {
			continue
		}
		start := r.StartDate.UTC()
		k := key{start.Year(), start.Month()}
		m, ok := byMonth[k]
		if !ok {
			m = &MonthlyStats{Year: k.year, Month: k.month, Volumes: []string{}}
			byMonth[k] = m
		}
		cost, _ := r.ValidCost()
		m.Count++
		m.TotalCost += cost
		if len(m.Volumes) < 3 && r.Volume != "" && !funk.ContainsString(m.Volumes, r.Volume) {
			m.Volumes = append(m.Volumes, r.Volume)
		}
	}

	months := make([]MonthlyStats, 0, len(byMonth))
	for _, m := range byMonth {
		if m.Count > 0 {
			m.AverageCost = m.TotalCost / float64(m.Count)
		}
		months = append(months, *m)
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year == months[j].Year {
			return months[i].Month < months[j].Month
		}
		return months[i].Year < months[j].Year
	})
	return months
}

// BuildReport computes the report of the zone, agency or gare with the given ID
func BuildReport(s *Snapshot, kind ScopeKind, id string, now time.Time) (*Report, error) {
	var name string
	switch kind {
	case ScopeZone:
		z, ok := s.Zone(id)
		if !ok {
			return nil, fmt.Errorf("Zone %w", types.ErrNotFound)
		}
		name = z.Name
	case ScopeAgency:
		a, ok := s.Agency(id)
		if !ok {
			return nil, fmt.Errorf("Agency %w", types.ErrNotFound)
		}
		name = a.Name
	case ScopeGare:
		g, ok := s.Gare(id)
		if !ok {
			return nil, fmt.Errorf("Gare %w", types.ErrNotFound)
		}
		name = g.Name
	default:
		return nil, fmt.Errorf("BuildReport: unknown scope kind %q", kind)
	}

	recharges := ScopedRecharges(s, kind, id)
	return &Report{
		Kind:        kind,
		EntityID:    id,
		EntityName:  name,
		Statistics:  Aggregate(s, kind, id, recharges, now),
		Monthly:     MonthlyBreakdown(recharges),
		Recharges:   recharges,
		GeneratedAt: now,
	}, nil
}
