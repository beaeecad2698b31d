package website

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/fasorail/recharges/compute"
	"github.com/fasorail/recharges/types"
	"github.com/gbl08ma/sqalx"
	"github.com/gorilla/mux"
)

// loadReport returns the report addressed by the request route, if the
// user may see it. On failure, the response has already been written.
func loadReport(node sqalx.Node, w http.ResponseWriter, r *http.Request, now time.Time) (*types.User, *compute.Report, *compute.Snapshot, bool) {
	user, err := currentUser(node, w, r, true)
	if err != nil {
		webLog.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return nil, nil, nil, false
	}
	if user == nil {
		return nil, nil, nil, false
	}

	kind, ok := compute.ParseScopeKind(mux.Vars(r)["kind"])
	if !ok {
		http.NotFound(w, r)
		return nil, nil, nil, false
	}
	id := mux.Vars(r)["id"]

	report, s, err := statsHandler.Report(node, user, kind, id, now)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			webLog.Println(err)
		}
		http.NotFound(w, r)
		return nil, nil, nil, false
	}
	return user, report, s, true
}

// sortedStats returns the groups ordered by name
func sortedStats(groups map[string]*compute.GroupStats) []*compute.GroupStats {
	result := make([]*compute.GroupStats, 0, len(groups))
	for _, g := range groups {
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// ReportPage serves the report of a zone, agency or gare
func ReportPage(w http.ResponseWriter, r *http.Request) {
	tx, err := rootSqalxNode.Beginx()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		webLog.Println(err)
		return
	}
	defer tx.Commit() // read-only tx

	now := time.Now()
	user, report, s, ok := loadReport(tx, w, r, now)
	if !ok {
		return
	}

	p := struct {
		PageCommons
		Report    *compute.Report
		Operators []*compute.GroupStats
		Agencies  []*compute.GroupStats
		Gares     []*compute.GroupStats
		Recharges []rechargeRow
		BaseURL   string
	}{
		PageCommons: InitPageCommons(r, user, fmt.Sprintf("Rapport %s %s", report.Kind.Label(), report.EntityName)),
		Report:      report,
		Operators:   sortedStats(report.Statistics.OperatorStats),
		Agencies:    sortedStats(report.Statistics.AgencyStats),
		Gares:       sortedStats(report.Statistics.GareStats),
		BaseURL:     fmt.Sprintf("/reports/%s/%s", report.Kind, report.EntityID),
	}
	for _, recharge := range report.Recharges {
		p.Recharges = append(p.Recharges, newRechargeRow(s, recharge, now))
	}

	render(w, "report.html", p)
}

// ReportCSV serves the CSV export of a report
func ReportCSV(w http.ResponseWriter, r *http.Request) {
	tx, err := rootSqalxNode.Beginx()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		webLog.Println(err)
		return
	}
	defer tx.Commit() // read-only tx

	_, report, s, ok := loadReport(tx, w, r, time.Now())
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, compute.CSVFilename(report)))
	w.Write([]byte(compute.ExportCSV(s, report)))
}

// ReportWhatsApp redirects to the WhatsApp share link of the report summary
func ReportWhatsApp(w http.ResponseWriter, r *http.Request) {
	tx, err := rootSqalxNode.Beginx()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		webLog.Println(err)
		return
	}
	defer tx.Commit() // read-only tx

	now := time.Now()
	_, report, _, ok := loadReport(tx, w, r, now)
	if !ok {
		return
	}

	err = r.ParseForm()
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	message := compute.WhatsAppMessage(report, now)
	http.Redirect(w, r, compute.WhatsAppURL(r.Form.Get("phone_number"), message), http.StatusSeeOther)
}

// ReportsPage lists the zones, agencies and gares the user can get reports for
func ReportsPage(w http.ResponseWriter, r *http.Request) {
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

	type entry struct {
		ID     string
		Name   string
		Parent string
	}
	p := struct {
		PageCommons
		Zones    []entry
		Agencies []entry
		Gares    []entry
	}{
		PageCommons: InitPageCommons(r, user, "Rapports"),
	}
	for _, z := range visibility.Zones(s.Zones) {
		p.Zones = append(p.Zones, entry{z.ID, z.Name, ""})
	}
	for _, a := range visibility.Agencies(s.Agencies) {
		p.Agencies = append(p.Agencies, entry{a.ID, a.Name, s.ZoneName(a.ZoneID)})
	}
	for _, g := range visibility.Gares(s.Gares) {
		p.Gares = append(p.Gares, entry{g.ID, g.Name, s.AgencyName(g.AgencyID)})
	}

	render(w, "reports.html", p)
}
