package compute

import (
	"time"

	"github.com/fasorail/recharges/types"
)

var testNow = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// newTestSnapshot builds a small network:
//
//	Centre        > Agence Ouaga > Ouagadougou (70000001, Orange) - R1 expired
//	                             > Koudougou   (70000002, Orange) - R2 expiring soon
//	Hauts-Bassins > Agence Bobo  > Bobo-Dioulasso (60000003, Moov) - R3 active
func newTestSnapshot() *Snapshot {
	zones := []*types.Zone{
		{ID: "z1", Name: "Centre"},
		{ID: "z2", Name: "Hauts-Bassins"},
	}
	agencies := []*types.Agency{
		{ID: "a1", Name: "Agence Ouaga", ZoneID: "z1"},
		{ID: "a2", Name: "Agence Bobo", ZoneID: "z2"},
	}
	gares := []*types.Gare{
		{ID: "g1", Name: "Ouagadougou", AgencyID: "a1"},
		{ID: "g2", Name: "Koudougou", AgencyID: "a1"},
		{ID: "g3", Name: "Bobo-Dioulasso", AgencyID: "a2"},
	}
	connections := []*types.Connection{
		{ID: "c1", LineNumber: "70000001", GareID: "g1", Operator: "Orange",
			OperatorType: types.OperatorTypeMobile, ConnectionType: "4G", Status: types.ConnectionActive},
		{ID: "c2", LineNumber: "70000002", GareID: "g2", Operator: "Orange",
			OperatorType: types.OperatorTypeMobile, ConnectionType: "4G", Status: types.ConnectionActive},
		{ID: "c3", LineNumber: "60000003", GareID: "g3", Operator: "Moov",
			OperatorType: types.OperatorTypeMobile, ConnectionType: "4G", Status: types.ConnectionSuspended},
	}
	recharges := []*types.Recharge{
		{ID: "r1", ConnectionID: "c1", GareID: "g1", Operator: "Orange", PaymentType: types.PaymentPrepaid,
			Volume: "5GB", Cost: 1000, StartDate: day(2026, time.October, 1), EndDate: testNow.Add(-24 * time.Hour)},
		{ID: "r2", ConnectionID: "c2", GareID: "g2", Operator: "Orange", PaymentType: types.PaymentPrepaid,
			Volume: "10GB", Cost: 2000, StartDate: day(2026, time.September, 19), EndDate: testNow.Add(72 * time.Hour)},
		{ID: "r3", ConnectionID: "c3", GareID: "g3", Operator: "Moov", PaymentType: types.PaymentPostpaid,
			Volume: "100Mbps", Cost: 500, StartDate: day(2026, time.October, 10), EndDate: testNow.AddDate(0, 0, 60)},
	}
	return NewSnapshot(zones, agencies, gares, connections, recharges)
}

func rechargeIDs(recharges []*types.Recharge) []string {
	ids := []string{}
	for _, r := range recharges {
		ids = append(ids, r.ID)
	}
	return ids
}
