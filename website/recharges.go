package website

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fasorail/recharges/compute"
	"github.com/fasorail/recharges/types"
)

var rechargeFilterFields = []string{"zone_id", "agency_id", "gare_id", "operator", "operator_type", "payment_type", "status"}

// criteriaFromForm builds the recharge filter of the recharges page.
// Unparseable dates are ignored and reported in the returned message.
func criteriaFromForm(form url.Values) (compute.Criteria, string) {
	criteria := compute.Criteria{
		Search: strings.TrimSpace(form.Get("search")),
		Fields: make(map[string]string),
	}
	for _, field := range rechargeFilterFields {
		if v := form.Get(field); v != "" {
			criteria.Fields[field] = v
		}
	}

	var message string
	if v := form.Get("from"); v != "" {
		if t, err := types.ParseTimestamp(v); err == nil {
			criteria.From = &t
		} else {
			message = "Date de début invalide"
		}
	}
	if v := form.Get("to"); v != "" {
		if t, err := types.ParseTimestamp(v); err == nil {
			criteria.To = &t
		} else {
			message = "Date de fin invalide"
		}
	}
	return criteria, message
}

// RechargesPage serves the filterable list of recharges
func RechargesPage(w http.ResponseWriter, r *http.Request) {
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

	s, err := statsHandler.Snapshot(tx)
	if err != nil {
		webLog.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	visibility := compute.VisibilityFor(user, s)

	now := time.Now()
	query := r.URL.Query()
	criteria, message := criteriaFromForm(query)
	recharges := compute.FilterRecharges(s, visibility.Recharges(s, s.Recharges), criteria, now)

	p := struct {
		PageCommons
		Query     url.Values
		Message   string
		Zones     []*types.Zone
		Agencies  []*types.Agency
		Gares     []*types.Gare
		Operators []string
		Statuses  []compute.Status
		Recharges []rechargeRow
		TotalCost float64
	}{
		PageCommons: InitPageCommons(r, user, "Recharges"),
		Query:       query,
		Message:     message,
		Zones:       visibility.Zones(s.Zones),
		Agencies:    visibility.Agencies(s.Agencies),
		Gares:       visibility.Gares(s.Gares),
		Operators:   types.Operators,
		Statuses:    []compute.Status{compute.StatusActive, compute.StatusExpiringSoon, compute.StatusExpired},
	}
	for _, recharge := range recharges {
		p.Recharges = append(p.Recharges, newRechargeRow(s, recharge, now))
		cost, _ := recharge.ValidCost()
		p.TotalCost += cost
	}

	render(w, "recharges.html", p)
}
