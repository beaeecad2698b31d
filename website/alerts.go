package website

import (
	"net/http"
	"time"

	"github.com/fasorail/recharges/compute"
	"github.com/fasorail/recharges/types"
	"github.com/gorilla/mux"
)

// AlertsPage lists the alerts of the recharges the user can see
func AlertsPage(w http.ResponseWriter, r *http.Request) {
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
	alerts, err := types.GetAlerts(tx)
	if err != nil {
		webLog.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	now := time.Now()
	type alertRow struct {
		*types.Alert
		Due bool
	}
	p := struct {
		PageCommons
		Alerts []alertRow
	}{
		PageCommons: InitPageCommons(r, user, "Alertes"),
	}
	for _, alert := range compute.VisibilityFor(user, s).Alerts(s, alerts) {
		p.Alerts = append(p.Alerts, alertRow{alert, !alert.AlertDate.After(now)})
	}

	render(w, "alerts.html", p)
}

// DismissAlert dismisses an alert and goes back to the alerts page
func DismissAlert(w http.ResponseWriter, r *http.Request) {
	tx, err := rootSqalxNode.Beginx()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		webLog.Println(err)
		return
	}
	defer tx.Rollback()

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
	alert, err := types.GetAlert(tx, mux.Vars(r)["id"])
	if err != nil || len(compute.VisibilityFor(user, s).Alerts(s, []*types.Alert{alert})) == 0 {
		http.NotFound(w, r)
		return
	}

	err = alert.Dismiss(tx)
	if err != nil {
		webLog.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	err = tx.Commit()
	if err != nil {
		webLog.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/alerts", http.StatusSeeOther)
}
