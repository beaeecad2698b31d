package resource

import (
	"time"

	"github.com/fasorail/recharges/types"
	"github.com/yarf-framework/yarf"
)

// Alert composites resource
type Alert struct {
	resource
}

type apiAlert struct {
	ID               string            `msgpack:"id" json:"id"`
	RechargeID       string            `msgpack:"recharge_id" json:"recharge_id"`
	LineNumber       string            `msgpack:"line_number" json:"line_number"`
	Operator         string            `msgpack:"operator" json:"operator"`
	Message          string            `msgpack:"message" json:"message"`
	AlertDate        time.Time         `msgpack:"alert_date" json:"alert_date"`
	DaysBeforeExpiry int               `msgpack:"days_before_expiry" json:"days_before_expiry"`
	Status           types.AlertStatus `msgpack:"status" json:"status"`
	CreatedAt        time.Time         `msgpack:"created_at" json:"created_at"`
}

// WithDependencies associates the database, session store and stats handler with this resource
func (r *Alert) WithDependencies(deps Dependencies) *Alert {
	r.with(deps)
	return r
}

// Get serves HTTP GET requests on this resource
func (r *Alert) Get(c *yarf.Context) error {
	tx, err := r.Beginx()
	if err != nil {
		return err
	}
	defer tx.Commit() // read-only tx

	session, err := r.authenticate(c, tx)
	if err != nil {
		return err
	}
	s, visibility, err := r.visibility(tx, session)
	if err != nil {
		return err
	}

	alerts, err := types.GetAlerts(tx)
	if err != nil {
		return err
	}
	alerts = visibility.Alerts(s, alerts)
	apialerts := make([]apiAlert, len(alerts))
	for i := range alerts {
		apialerts[i] = apiAlert(*alerts[i])
	}
	RenderData(c, apialerts, noCache)
	return nil
}

// Put serves HTTP PUT requests on this resource
func (r *Alert) Put(c *yarf.Context) error {
	if c.Param("action") != "dismiss" {
		return notFound("Action")
	}

	tx, err := r.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	session, err := r.authenticate(c, tx)
	if err != nil {
		return err
	}
	s, visibility, err := r.visibility(tx, session)
	if err != nil {
		return err
	}

	alert, err := types.GetAlert(tx, c.Param("id"))
	if err != nil || len(visibility.Alerts(s, []*types.Alert{alert})) == 0 {
		return notFound("Alert")
	}
	err = alert.Dismiss(tx)
	if err != nil {
		return err
	}
	err = tx.Commit()
	if err != nil {
		return err
	}

	RenderData(c, apiMessage{"Alert dismissed"}, noCache)
	return nil
}
