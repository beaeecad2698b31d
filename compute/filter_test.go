package compute

import (
	"testing"
	"time"

	"github.com/fasorail/recharges/types"
	"github.com/stretchr/testify/assert"
)

func TestFilterRechargesNoCriteriaIsIdentity(t *testing.T) {
	s := newTestSnapshot()
	got := FilterRecharges(s, s.Recharges, Criteria{}, testNow)
	assert.Equal(t, s.Recharges, got)

	got = FilterRecharges(s, s.Recharges, Criteria{Fields: map[string]string{"operator": "", "status": ""}}, testNow)
	assert.Equal(t, s.Recharges, got)
	assert.False(t, Criteria{Fields: map[string]string{"operator": ""}}.Active())
}

func TestFilterRechargesEmptyInput(t *testing.T) {
	s := newTestSnapshot()
	got := FilterRecharges(s, nil, Criteria{Search: "orange"}, testNow)
	assert.Empty(t, got)
	got = FilterRecharges(s, []*types.Recharge{}, Criteria{}, testNow)
	assert.Empty(t, got)
}

func TestFilterRechargesSearch(t *testing.T) {
	s := newTestSnapshot()
	tests := []struct {
		search string
		want   []string
	}{
		{"orange", []string{"r1", "r2"}},
		{"ORANGE", []string{"r1", "r2"}},
		{"koudou", []string{"r2"}},
		{"KÔUDOUGOU", []string{"r2"}},
		{"60000003", []string{"r3"}},
		{"mbps", []string{"r3"}},
		{"gb", []string{"r1", "r2"}},
		{"  moov ", []string{"r3"}},
		{"airtel", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got := FilterRecharges(s, s.Recharges, Criteria{Search: tt.search}, testNow)
			assert.Equal(t, tt.want, rechargeIDs(got))
		})
	}
}

func TestFilterRechargesOrangeActiveIsEmpty(t *testing.T) {
	s := newTestSnapshot()
	got := FilterRecharges(s, s.Recharges, Criteria{
		Search: "orange",
		Fields: map[string]string{"status": string(StatusActive)},
	}, testNow)
	assert.Empty(t, got)
}

func TestFilterRechargesFields(t *testing.T) {
	s := newTestSnapshot()
	tests := []struct {
		name   string
		fields map[string]string
		want   []string
	}{
		{"derived status", map[string]string{"status": "expiring_soon"}, []string{"r2"}},
		{"operator", map[string]string{"operator": "Orange"}, []string{"r1", "r2"}},
		{"operator is exact", map[string]string{"operator": "orange"}, []string{}},
		{"gare", map[string]string{"gare_id": "g3"}, []string{"r3"}},
		{"agency through gare", map[string]string{"agency_id": "a1"}, []string{"r1", "r2"}},
		{"zone through agency", map[string]string{"zone_id": "z2"}, []string{"r3"}},
		{"payment type", map[string]string{"payment_type": "postpaid"}, []string{"r3"}},
		{"all must match", map[string]string{"operator": "Orange", "gare_id": "g2"}, []string{"r2"}},
		{"unknown field", map[string]string{"colour": "red"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterRecharges(s, s.Recharges, Criteria{Fields: tt.fields}, testNow)
			assert.Equal(t, tt.want, rechargeIDs(got))
		})
	}
}

func TestFilterRechargesIgnoresStoredStatusHints(t *testing.T) {
	s := newTestSnapshot()
	// r1 ended yesterday: whatever a client once thought, it is expired now
	later := testNow.AddDate(0, 0, 10)
	got := FilterRecharges(s, s.Recharges, Criteria{Fields: map[string]string{"status": "expired"}}, later)
	assert.Equal(t, []string{"r1", "r2"}, rechargeIDs(got))
}

func TestFilterRechargesDateRange(t *testing.T) {
	s := newTestSnapshot()
	from := testNow
	to := testNow.AddDate(0, 0, 3)
	got := FilterRecharges(s, s.Recharges, Criteria{From: &from, To: &to}, testNow)
	assert.Equal(t, []string{"r2"}, rechargeIDs(got))

	// bounds are inclusive whole days
	yesterday := day(2026, time.October, 15)
	got = FilterRecharges(s, s.Recharges, Criteria{From: &yesterday, To: &yesterday}, testNow)
	assert.Equal(t, []string{"r1"}, rechargeIDs(got))

	got = FilterRecharges(s, s.Recharges, Criteria{From: &to}, testNow)
	assert.Equal(t, []string{"r2", "r3"}, rechargeIDs(got))

	got = FilterRecharges(s, s.Recharges, Criteria{To: &yesterday}, testNow)
	assert.Equal(t, []string{"r1"}, rechargeIDs(got))
}

func TestFilterRechargesMalformedEndDate(t *testing.T) {
	s := newTestSnapshot()
	broken := &types.Recharge{ID: "r4", ConnectionID: "c1", Operator: "Orange", Cost: 100}
	recharges := append([]*types.Recharge{}, s.Recharges...)
	recharges = append(recharges, broken)

	got := FilterRecharges(s, recharges, Criteria{Search: "orange"}, testNow)
	assert.Equal(t, []string{"r1", "r2", "r4"}, rechargeIDs(got))

	got = FilterRecharges(s, recharges, Criteria{Fields: map[string]string{"status": "unknown"}}, testNow)
	assert.Equal(t, []string{"r4"}, rechargeIDs(got))

	from := day(2020, time.January, 1)
	got = FilterRecharges(s, recharges, Criteria{From: &from}, testNow)
	assert.Equal(t, []string{"r1", "r2", "r3"}, rechargeIDs(got))
}

func TestFilterIsIdempotent(t *testing.T) {
	s := newTestSnapshot()
	criteria := []Criteria{
		{Search: "orange"},
		{Fields: map[string]string{"zone_id": "z1"}},
		{Search: "o", Fields: map[string]string{"status": "expired"}},
	}
	for _, c := range criteria {
		once := FilterRecharges(s, s.Recharges, c, testNow)
		twice := FilterRecharges(s, once, c, testNow)
		assert.Equal(t, once, twice)
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	s := newTestSnapshot()
	reversed := []*types.Recharge{s.Recharges[2], s.Recharges[1], s.Recharges[0]}
	got := FilterRecharges(s, reversed, Criteria{Search: "o"}, testNow)
	assert.Equal(t, []string{"r3", "r2", "r1"}, rechargeIDs(got))
}

func TestFilterMissingParents(t *testing.T) {
	s := newTestSnapshot()
	orphan := &types.Connection{ID: "c9", LineNumber: "79999999", GareID: "gone", Operator: "Telecel"}
	got := FilterConnections(s, []*types.Connection{orphan}, Criteria{Search: "inconnue"})
	assert.Equal(t, []*types.Connection{orphan}, got)

	legacy := &types.Recharge{ID: "r8", GareID: "g2", Operator: "Telecel", EndDate: testNow}
	got2 := FilterRecharges(s, []*types.Recharge{legacy}, Criteria{Search: "koudougou"}, testNow)
	assert.Equal(t, []string{"r8"}, rechargeIDs(got2))
	got2 = FilterRecharges(s, []*types.Recharge{legacy}, Criteria{Search: "n/a"}, testNow)
	assert.Equal(t, []string{"r8"}, rechargeIDs(got2))
}

func TestFilterHierarchy(t *testing.T) {
	s := newTestSnapshot()

	zones := FilterZones(s, s.Zones, Criteria{Search: "hauts"})
	assert.Len(t, zones, 1)
	assert.Equal(t, "z2", zones[0].ID)

	agencies := FilterAgencies(s, s.Agencies, Criteria{Fields: map[string]string{"zone_id": "z1"}})
	assert.Len(t, agencies, 1)
	assert.Equal(t, "a1", agencies[0].ID)

	agencies = FilterAgencies(s, s.Agencies, Criteria{Search: "centre"})
	assert.Len(t, agencies, 1)
	assert.Equal(t, "a1", agencies[0].ID)

	gares := FilterGares(s, s.Gares, Criteria{Fields: map[string]string{"zone_id": "z1"}})
	assert.Len(t, gares, 2)
	gares = FilterGares(s, s.Gares, Criteria{Search: "bobo"})
	assert.Len(t, gares, 1)
	assert.Equal(t, "g3", gares[0].ID)

	connections := FilterConnections(s, s.Connections, Criteria{Fields: map[string]string{"status": "suspended"}})
	assert.Len(t, connections, 1)
	assert.Equal(t, "c3", connections[0].ID)

	connections = FilterConnections(s, s.Connections, Criteria{Fields: map[string]string{"agency_id": "a1", "operator": "Orange"}})
	assert.Len(t, connections, 2)

	// connections without an expiry date are excluded by a date range
	from := testNow
	connections = FilterConnections(s, s.Connections, Criteria{From: &from})
	assert.Empty(t, connections)
}
