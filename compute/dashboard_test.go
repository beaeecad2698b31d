package compute

import (
	"testing"

	"github.com/fasorail/recharges/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	s := newTestSnapshot()
	alerts := []*types.Alert{
		{ID: "al1", Status: types.AlertPending},
		{ID: "al2", Status: types.AlertSent},
		{ID: "al3", Status: types.AlertPending},
	}
	stats := Dashboard(s, alerts, testNow)

	assert.Equal(t, 2, stats.TotalZones)
	assert.Equal(t, 2, stats.TotalAgencies)
	assert.Equal(t, 3, stats.TotalGares)
	assert.Equal(t, 3, stats.TotalConnections)
	assert.Equal(t, 2, stats.ActiveConnections)
	// c3 is suspended
	assert.Zero(t, stats.InactiveConnections)
	assert.Equal(t, 3, stats.TotalRecharges)
	assert.Equal(t, 1, stats.ActiveRecharges)
	assert.Equal(t, 1, stats.ExpiringRecharges)
	assert.Equal(t, 1, stats.ExpiredRecharges)
	assert.Equal(t, 3500.0, stats.TotalCost)
	assert.Equal(t, 2, stats.PendingAlerts)
	assert.Equal(t, testNow, stats.GeneratedAt)

	assert.Equal(t, map[string]int{"prepaid": 0, "postpaid": 1}, stats.PaymentTypeStats)
	assert.Equal(t, map[string]int{"mobile": 2, "fibre": 0}, stats.ConnectionTypeStats)

	require.Len(t, stats.OperatorStats, len(types.Operators))
	assert.Equal(t, OperatorDashboardStats{Operator: "Orange", Type: types.OperatorTypeMobile,
		RechargeCount: 0, ConnectionsCount: 2, TotalCost: 3000}, stats.OperatorStats[0])
	assert.Equal(t, OperatorDashboardStats{Operator: "Moov", Type: types.OperatorTypeMobile,
		RechargeCount: 1, ConnectionsCount: 0, TotalCost: 500}, stats.OperatorStats[2])
	assert.Equal(t, "Canalbox", stats.OperatorStats[6].Operator)
	assert.Equal(t, types.OperatorTypeFibre, stats.OperatorStats[6].Type)
	assert.Zero(t, stats.OperatorStats[6].RechargeCount)
}

func TestDashboardUnknownOperatorComesLast(t *testing.T) {
	recharges := []*types.Recharge{{ID: "x", Operator: "Airtel", Cost: 100}}
	stats := Dashboard(NewSnapshot(nil, nil, nil, nil, recharges), nil, testNow)

	require.Len(t, stats.OperatorStats, len(types.Operators)+1)
	last := stats.OperatorStats[len(stats.OperatorStats)-1]
	assert.Equal(t, "Airtel", last.Operator)
	assert.Zero(t, last.RechargeCount)
	assert.Equal(t, 100.0, last.TotalCost)
	assert.Zero(t, stats.ActiveRecharges)
}

func TestDashboardCountsOnlyActiveLinesAndRecharges(t *testing.T) {
	connections := []*types.Connection{
		{ID: "c1", Operator: "Orange", OperatorType: types.OperatorTypeMobile, Status: types.ConnectionActive},
		{ID: "c2", Operator: "Orange", OperatorType: types.OperatorTypeMobile, Status: types.ConnectionSuspended},
		{ID: "c3", Operator: "Moov", OperatorType: types.OperatorTypeMobile, Status: types.ConnectionInactive},
	}
	recharges := []*types.Recharge{
		{ID: "r1", ConnectionID: "c1", Operator: "Orange", PaymentType: types.PaymentPrepaid, Cost: 1000,
			StartDate: testNow.AddDate(0, -1, 0), EndDate: testNow.AddDate(0, 0, -1)},
		{ID: "r2", ConnectionID: "c1", Operator: "Orange", PaymentType: types.PaymentPrepaid, Cost: 2000,
			StartDate: testNow.AddDate(0, 0, -1), EndDate: testNow.AddDate(0, 0, 30)},
	}
	stats := Dashboard(NewSnapshot(nil, nil, nil, connections, recharges), nil, testNow)

	assert.Equal(t, 3, stats.TotalConnections)
	assert.Equal(t, 1, stats.ActiveConnections)
	assert.Equal(t, 1, stats.InactiveConnections)
	assert.Equal(t, 1, stats.ActiveRecharges)
	assert.Equal(t, 1, stats.ExpiredRecharges)
	assert.Equal(t, 3000.0, stats.TotalCost)
	assert.Equal(t, 1, stats.PaymentTypeStats["prepaid"])

	assert.Equal(t, OperatorDashboardStats{Operator: "Orange", Type: types.OperatorTypeMobile,
		RechargeCount: 1, ConnectionsCount: 1, TotalCost: 3000}, stats.OperatorStats[0])
	assert.Equal(t, OperatorDashboardStats{Operator: "Moov", Type: types.OperatorTypeMobile}, stats.OperatorStats[2])
}
