package website

import (
	"net/http"
	"sort"
	"time"

	"github.com/fasorail/recharges/compute"
	"github.com/fasorail/recharges/types"
)

// rechargeRow is a recharge as listed in the website tables
type rechargeRow struct {
	*types.Recharge
	LineNumber string
	GareName   string
	Status     compute.Status
	Remaining  string
}

func newRechargeRow(s *compute.Snapshot, recharge *types.Recharge, now time.Time) rechargeRow {
	return rechargeRow{
		Recharge:   recharge,
		LineNumber: s.RechargeLineNumber(recharge),
		GareName:   s.GareName(s.RechargeGareID(recharge)),
		Status:     compute.StatusOf(recharge, now),
		Remaining:  compute.RemainingLabel(recharge.EndDate, now),
	}
}

// HomePage serves the dashboard
func HomePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	tx, err := rootSqalxNode.Beginx()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		webLog.Println(err)
		return
	}
	defer tx.Commit() // read-only tx

	user, err := currentUser(tx, w, r, true)
	if err != nil {
		webLog.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if user == nil {
		return
	}

	now := time.Now()
	p := struct {
		PageCommons
		Stats    compute.DashboardStats
		Expiring []rechargeRow
	}{
		PageCommons: InitPageCommons(r, user, "Tableau de bord"),
	}

	p.Stats, err = statsHandler.Dashboard(tx, user, now)
	if err != nil {
		webLog.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	s, err := statsHandler.Snapshot(tx)
	if err != nil {
		webLog.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	visible := compute.VisibilityFor(user, s).Recharges(s, s.Recharges)
	expiring := compute.FilterRecharges(s, visible, compute.Criteria{
		Fields: map[string]string{"status": string(compute.StatusExpiringSoon)},
	}, now)
	sort.SliceStable(expiring, func(i, j int) bool {
		return expiring[i].EndDate.Before(expiring[j].EndDate)
	})
	for _, recharge := range expiring {
		p.Expiring = append(p.Expiring, newRechargeRow(s, recharge, now))
	}

	render(w, "index.html", p)
}
