package compute

import (
	"fmt"
	"testing"
	"time"

	"github.com/fasorail/recharges/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateEndToEnd(t *testing.T) {
	s := newTestSnapshot()
	stats := Aggregate(s, ScopeGare, "", s.Recharges, testNow)

	assert.Equal(t, 3, stats.TotalRecharges)
	assert.Equal(t, 3500.0, stats.TotalCost)
	assert.Equal(t, 1, stats.ExpiredRecharges)
	assert.Equal(t, 1, stats.ExpiringRecharges)
	assert.Equal(t, 1, stats.ActiveRecharges)
	assert.Zero(t, stats.UnknownRecharges)

	assert.Equal(t, map[string]*GroupStats{
		"Orange": {Name: "Orange", Count: 2, TotalCost: 3000, ActiveCount: 0},
		"Moov":   {Name: "Moov", Count: 1, TotalCost: 500, ActiveCount: 1},
	}, stats.OperatorStats)
	assert.Nil(t, stats.GareStats)
	assert.Nil(t, stats.AgencyStats)
}

func TestAggregateEmpty(t *testing.T) {
	s := newTestSnapshot()
	stats := Aggregate(s, ScopeGare, "g1", nil, testNow)
	assert.Zero(t, stats.TotalRecharges)
	assert.Zero(t, stats.ActiveRecharges)
	assert.Zero(t, stats.ExpiringRecharges)
	assert.Zero(t, stats.ExpiredRecharges)
	assert.Zero(t, stats.TotalCost)
	assert.Empty(t, stats.OperatorStats)

	assert.Empty(t, MonthlyBreakdown(nil))
}

func TestAggregatePartition(t *testing.T) {
	operators := []string{"Orange", "Moov", "Telecel", "Canalbox"}
	recharges := []*types.Recharge{}
	for i := 0; i < 40; i++ {
		recharges = append(recharges, &types.Recharge{
			ID:        fmt.Sprintf("r%d", i),
			Operator:  operators[i%len(operators)],
			Cost:      float64(250 * (i%7 + 1)),
			StartDate: testNow.AddDate(0, -i%5, 0),
			EndDate:   testNow.AddDate(0, 0, i-20),
		})
	}
	s := NewSnapshot(nil, nil, nil, nil, recharges)
	stats := Aggregate(s, ScopeGare, "", recharges, testNow)

	count, active := 0, 0
	cost := 0.0
	for _, op := range stats.OperatorStats {
		count += op.Count
		active += op.ActiveCount
		cost += op.TotalCost
	}
	assert.Equal(t, stats.TotalRecharges, count)
	assert.Equal(t, stats.ActiveRecharges, active)
	assert.InDelta(t, stats.TotalCost, cost, 1e-9)
	assert.Equal(t, stats.TotalRecharges,
		stats.ActiveRecharges+stats.ExpiringRecharges+stats.ExpiredRecharges+stats.UnknownRecharges)

	monthlyCount := 0
	for _, m := range MonthlyBreakdown(recharges) {
		monthlyCount += m.Count
	}
	assert.Equal(t, len(recharges), monthlyCount)
}

func TestAggregateMalformedItems(t *testing.T) {
	recharges := []*types.Recharge{
		{ID: "ok", Operator: "Orange", Cost: 1000, EndDate: testNow.AddDate(0, 0, 30)},
		{ID: "no-end", Operator: "Orange", Cost: 400},
		{ID: "negative", Operator: "Moov", Cost: -50, EndDate: testNow.AddDate(0, 0, 30)},
	}
	s := NewSnapshot(nil, nil, nil, nil, recharges)
	stats := Aggregate(s, ScopeGare, "", recharges, testNow)
	assert.Equal(t, 3, stats.TotalRecharges)
	assert.Equal(t, 2, stats.ActiveRecharges)
	assert.Equal(t, 1, stats.UnknownRecharges)
	assert.Equal(t, 1400.0, stats.TotalCost)
	assert.Equal(t, 0.0, stats.OperatorStats["Moov"].TotalCost)
}

func TestScopedRecharges(t *testing.T) {
	s := newTestSnapshot()
	assert.Equal(t, []string{"r1", "r2"}, rechargeIDs(ScopedRecharges(s, ScopeZone, "z1")))
	assert.Equal(t, []string{"r3"}, rechargeIDs(ScopedRecharges(s, ScopeAgency, "a2")))
	assert.Equal(t, []string{"r2"}, rechargeIDs(ScopedRecharges(s, ScopeGare, "g2")))
	assert.Empty(t, ScopedRecharges(s, ScopeGare, "nope"))
	assert.Empty(t, ScopedRecharges(s, ScopeKind("network"), "z1"))
}

func TestBuildZoneReport(t *testing.T) {
	s := newTestSnapshot()
	report, err := BuildReport(s, ScopeZone, "z1", testNow)
	require.NoError(t, err)

	assert.Equal(t, ScopeZone, report.Kind)
	assert.Equal(t, "Centre", report.EntityName)
	assert.Equal(t, testNow, report.GeneratedAt)
	assert.Equal(t, []string{"r1", "r2"}, rechargeIDs(report.Recharges))

	stats := report.Statistics
	assert.Equal(t, 2, stats.TotalRecharges)
	assert.Equal(t, 3000.0, stats.TotalCost)
	assert.Equal(t, 2, stats.TotalGares)
	assert.Equal(t, 1, stats.TotalAgencies)
	assert.Equal(t, &GroupStats{ID: "g1", Name: "Ouagadougou", Count: 1, TotalCost: 1000}, stats.GareStats["g1"])
	assert.Equal(t, &GroupStats{ID: "g2", Name: "Koudougou", Count: 1, TotalCost: 2000}, stats.GareStats["g2"])
	assert.Equal(t, &GroupStats{ID: "a1", Name: "Agence Ouaga", Count: 2, TotalCost: 3000, Gares: 2}, stats.AgencyStats["a1"])
}

func TestBuildAgencyAndGareReports(t *testing.T) {
	s := newTestSnapshot()

	report, err := BuildReport(s, ScopeAgency, "a2", testNow)
	require.NoError(t, err)
	assert.Equal(t, "Agence Bobo", report.EntityName)
	assert.Equal(t, 1, report.Statistics.TotalGares)
	assert.Equal(t, 1, report.Statistics.GareStats["g3"].ActiveCount)
	assert.Nil(t, report.Statistics.AgencyStats)

	report, err = BuildReport(s, ScopeGare, "g1", testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Statistics.ExpiredRecharges)
	assert.Nil(t, report.Statistics.GareStats)

	// a gare without recharges still shows up in its agency report
	s.Gares = append(s.Gares, &types.Gare{ID: "g4", Name: "Ziniaré", AgencyID: "a1"})
	s = NewSnapshot(s.Zones, s.Agencies, s.Gares, s.Connections, s.Recharges)
	report, err = BuildReport(s, ScopeAgency, "a1", testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Statistics.TotalGares)
	assert.Equal(t, 0, report.Statistics.GareStats["g4"].Count)
}

func TestBuildReportNotFound(t *testing.T) {
	s := newTestSnapshot()
	for _, kind := range []ScopeKind{ScopeZone, ScopeAgency, ScopeGare} {
		_, err := BuildReport(s, kind, "missing", testNow)
		assert.ErrorIs(t, err, types.ErrNotFound)
	}
	_, err := BuildReport(s, ScopeKind("network"), "z1", testNow)
	assert.Error(t, err)
}

func TestMonthlyBreakdown(t *testing.T) {
	s := newTestSnapshot()
	months := MonthlyBreakdown(s.Recharges)
	require.Len(t, months, 2)

	// first seen month is October, but months come out chronologically
	assert.Equal(t, MonthlyStats{Year: 2026, Month: time.September, Count: 1, TotalCost: 2000,
		AverageCost: 2000, Volumes: []string{"10GB"}}, months[0])
	assert.Equal(t, MonthlyStats{Year: 2026, Month: time.October, Count: 2, TotalCost: 1500,
		AverageCost: 750, Volumes: []string{"5GB", "100Mbps"}}, months[1])
}

func TestMonthlyBreakdownVolumes(t *testing.T) {
	start := day(2026, time.March, 3)
	recharges := []*types.Recharge{}
	for _, v := range []string{"1GB", "1GB", "2GB", "", "3GB", "4GB"} {
		recharges = append(recharges, &types.Recharge{Volume: v, Cost: 100, StartDate: start})
	}
	recharges = append(recharges, &types.Recharge{Volume: "9GB", Cost: 100})

	months := MonthlyBreakdown(recharges)
	require.Len(t, months, 1)
	assert.Equal(t, []string{"1GB", "2GB", "3GB"}, months[0].Volumes)
	assert.Equal(t, 6, months[0].Count)
	assert.InDelta(t, 100.0, months[0].AverageCost, 1e-9)
}

func TestMonthlyBreakdownAcrossYears(t *testing.T) {
	recharges := []*types.Recharge{
		{Cost: 1, StartDate: day(2026, time.January, 5)},
		{Cost: 1, StartDate: day(2025, time.December, 5)},
		{Cost: 1, StartDate: day(2025, time.February, 5)},
	}
	months := MonthlyBreakdown(recharges)
	require.Len(t, months, 3)
	assert.Equal(t, 2025, months[0].Year)
	assert.Equal(t, time.February, months[0].Month)
	assert.Equal(t, time.December, months[1].Month)
	assert.Equal(t, 2026, months[2].Year)
}

func TestParseScopeKind(t *testing.T) {
	k, ok := ParseScopeKind("agency")
	assert.True(t, ok)
	assert.Equal(t, ScopeAgency, k)
	assert.Equal(t, "Agence", k.Label())

	_, ok = ParseScopeKind("network")
	assert.False(t, ok)
}
