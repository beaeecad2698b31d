package compute

import (
	"time"

	"github.com/fasorail/recharges/types"
)

// OperatorDashboardStats summarises the activity of one operator
type OperatorDashboardStats struct {
	Operator         string             `msgpack:"operator" json:"operator"`
	Type             types.OperatorType `msgpack:"type" json:"type"`
	RechargeCount    int                `msgpack:"recharge_count" json:"recharge_count"`
	ConnectionsCount int                `msgpack:"connections_count" json:"connections_count"`
	TotalCost        float64            `msgpack:"total_cost" json:"total_cost"`
}

// DashboardStats are the figures shown on the dashboard
type DashboardStats struct {
	TotalZones          int                      `msgpack:"total_zones" json:"total_zones"`
	TotalAgencies       int                      `msgpack:"total_agencies" json:"total_agencies"`
	TotalGares          int                      `msgpack:"total_gares" json:"total_gares"`
	TotalConnections    int                      `msgpack:"total_connections" json:"total_connections"`
	ActiveConnections   int                      `msgpack:"active_connections" json:"active_connections"`
	InactiveConnections int                      `msgpack:"inactive_connections" json:"inactive_connections"`
	TotalRecharges      int                      `msgpack:"total_recharges" json:"total_recharges"`
	ActiveRecharges     int                      `msgpack:"active_recharges" json:"active_recharges"`
	ExpiringRecharges   int                      `msgpack:"expiring_recharges" json:"expiring_recharges"`
	ExpiredRecharges    int                      `msgpack:"expired_recharges" json:"expired_recharges"`
	TotalCost           float64                  `msgpack:"total_cost" json:"total_cost"`
	OperatorStats       []OperatorDashboardStats `msgpack:"operator_stats" json:"operator_stats"`
	PaymentTypeStats    map[string]int           `msgpack:"payment_type_stats" json:"payment_type_stats"`
	ConnectionTypeStats map[string]int           `msgpack:"connection_type_stats" json:"connection_type_stats"`
	PendingAlerts       int                      `msgpack:"pending_alerts" json:"pending_alerts"`
	GeneratedAt         time.Time                `msgpack:"generated_at" json:"generated_at"`
}

// Dashboard computes the dashboard figures over the whole snapshot.
// Suspended lines are neither active nor inactive. Per operator,
// RechargeCount and ConnectionsCount only count what is active while
// TotalCost sums every recharge. PaymentTypeStats and ConnectionTypeStats
// count active recharges and active lines. Every known operator is listed,
// followed by any other operator found in the data.
func Dashboard(s *Snapshot, alerts []*types.Alert, now time.Time) DashboardStats {
	stats := DashboardStats{
		TotalZones:       len(s.Zones),
		TotalAgencies:    len(s.Agencies),
		TotalGares:       len(s.Gares),
		TotalConnections: len(s.Connections),
		PaymentTypeStats: map[string]int{
			string(types.PaymentPrepaid):  0,
			string(types.PaymentPostpaid): 0,
		},
		ConnectionTypeStats: map[string]int{
			string(types.OperatorTypeMobile): 0,
			string(types.OperatorTypeFibre):  0,
		},
	}

	operatorIndex := make(map[string]int)
	operator := func(name string) *OperatorDashboardStats {
		i, ok := operatorIndex[name]
		if !ok {
			typ, _ := types.OperatorTypeOf(name)
			stats.OperatorStats = append(stats.OperatorStats, OperatorDashboardStats{Operator: name, Type: typ})
			i = len(stats.OperatorStats) - 1
			operatorIndex[name] = i
		}
		return &stats.OperatorStats[i]
	}
	for _, name := range types.Operators {
		operator(name)
	}

	for _, c := range s.Connections {
		op := operator(c.Operator)
		switch c.Status {
		case types.ConnectionActive:
			stats.ActiveConnections++
			stats.ConnectionTypeStats[string(c.OperatorType)]++
			op.ConnectionsCount++
		case types.ConnectionInactive:
			stats.InactiveConnections++
		}
	}

	for _, r := range s.Recharges {
		cost, _ := r.ValidCost()
		stats.TotalRecharges++
		stats.TotalCost += cost
		op := operator(r.Operator)
		op.TotalCost += cost
		switch StatusOf(r, now) {
		case StatusActive:
			stats.ActiveRecharges++
			stats.PaymentTypeStats[string(r.PaymentType)]++
			op.RechargeCount++
		case StatusExpiringSoon:
			stats.ExpiringRecharges++
		case StatusExpired:
			stats.ExpiredRecharges++
		}
	}

	for _, a := range alerts {
		if a.Status == types.AlertPending {
			stats.PendingAlerts++
		}
	}
	stats.GeneratedAt = now
	return stats
}
