package resource

import (
	"math"
	"strings"
	"time"

	"github.com/fasorail/recharges/compute"
	"github.com/fasorail/recharges/types"
	"github.com/yarf-framework/yarf"
)

// Recharge composites resource
type Recharge struct {
	resource
}

type apiRecharge struct {
	ID           string             `msgpack:"id" json:"id"`
	ConnectionID string             `msgpack:"connection_id" json:"connection_id"`
	GareID       string             `msgpack:"gare_id" json:"gare_id"`
	LineNumber   string             `msgpack:"line_number" json:"line_number"`
	Operator     string             `msgpack:"operator" json:"operator"`
	OperatorType types.OperatorType `msgpack:"operator_type" json:"operator_type"`
	PaymentType  types.PaymentType  `msgpack:"payment_type" json:"payment_type"`
	Volume       string             `msgpack:"volume" json:"volume"`
	Cost         float64            `msgpack:"cost" json:"cost"`
	StartDate    time.Time          `msgpack:"start_date" json:"start_date"`
	EndDate      time.Time          `msgpack:"end_date" json:"end_date"`
	Description  string             `msgpack:"description" json:"description"`
	CreatedBy    string             `msgpack:"created_by" json:"created_by"`
	CreatedAt    time.Time          `msgpack:"created_at" json:"created_at"`
}

type apiRechargeWrapper struct {
	apiRecharge `msgpack:",inline"`
	Status      compute.Status `msgpack:"status" json:"status"`
	StatusLabel string         `msgpack:"status_label" json:"status_label"`
	GareName    string         `msgpack:"gare_name" json:"gare_name"`
	ExpiresIn   string         `msgpack:"expires_in" json:"expires_in"`
}

type apiRechargeRequest struct {
	ConnectionID string            `msgpack:"connection_id" json:"connection_id"`
	PaymentType  types.PaymentType `msgpack:"payment_type" json:"payment_type"`
	Volume       string            `msgpack:"volume" json:"volume"`
	Cost         float64           `msgpack:"cost" json:"cost"`
	StartDate    string            `msgpack:"start_date" json:"start_date"`
	EndDate      string            `msgpack:"end_date" json:"end_date"`
	Description  string            `msgpack:"description" json:"description"`
}

// WithDependencies associates the database, session store and stats handler with this resource
func (r *Recharge) WithDependencies(deps Dependencies) *Recharge {
	r.with(deps)
	return r
}

func newAPIRecharge(s *compute.Snapshot, recharge *types.Recharge, now time.Time) apiRechargeWrapper {
	status := compute.StatusOf(recharge, now)
	data := apiRechargeWrapper{
		apiRecharge: apiRecharge(*recharge),
		Status:      status,
		StatusLabel: status.Label(),
		GareName:    s.GareName(s.RechargeGareID(recharge)),
		ExpiresIn:   compute.RemainingLabel(recharge.EndDate, now),
	}
	data.GareID = s.RechargeGareID(recharge)
	data.LineNumber = s.RechargeLineNumber(recharge)
	return data
}

// apply validates request and copies it into recharge
func (request *apiRechargeRequest) apply(recharge *types.Recharge) error {
	if request.PaymentType == "" {
		request.PaymentType = types.PaymentPrepaid
	}
	if !request.PaymentType.Valid() {
		return badRequest("Invalid payment type: " + string(request.PaymentType))
	}
	if math.IsNaN(request.Cost) || math.IsInf(request.Cost, 0) || request.Cost < 0 {
		return badRequest("Invalid cost")
	}
	start, err := types.ParseTimestamp(request.StartDate)
	if err != nil {
		return badRequest("Invalid start date: " + request.StartDate)
	}
	end, err := types.ParseTimestamp(request.EndDate)
	if err != nil {
		return badRequest("Invalid end date: " + request.EndDate)
	}
	if end.Before(start) {
		return badRequest("End date is before start date")
	}

	recharge.PaymentType = request.PaymentType
	recharge.Volume = strings.TrimSpace(request.Volume)
	recharge.Cost = request.Cost
	recharge.StartDate = start
	recharge.EndDate = end
	recharge.Description = request.Description
	return nil
}

// Get serves HTTP GET requests on this resource
func (r *Recharge) Get(c *yarf.Context) error {
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
	now := time.Now()

	if c.Param("id") != "" {
		recharge, err := types.GetRecharge(tx, c.Param("id"))
		if err != nil || !visibility.Gare(s.RechargeGareID(recharge)) {
			return notFound("Recharge")
		}
		RenderData(c, newAPIRecharge(s, recharge, now), noCache)
		return nil
	}

	criteria, err := criteriaFromQuery(c.Request.URL.Query(), "id", "connection_id", "gare_id",
		"agency_id", "zone_id", "operator", "operator_type", "payment_type", "volume", "status")
	if err != nil {
		return err
	}
	recharges := compute.FilterRecharges(s, visibility.Recharges(s, s.Recharges), criteria, now)
	apirecharges := make([]apiRechargeWrapper, len(recharges))
	for i := range recharges {
		apirecharges[i] = newAPIRecharge(s, recharges[i], now)
	}
	RenderData(c, apirecharges, noCache)
	return nil
}

// Post serves HTTP POST requests on this resource
func (r *Recharge) Post(c *yarf.Context) error {
	var request apiRechargeRequest
	err := r.DecodeRequest(c, &request)
	if err != nil {
		return err
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

	connection, err := types.GetConnection(tx, request.ConnectionID)
	if err != nil || !visibility.Gare(connection.GareID) {
		return notFound("Connection")
	}

	now := time.Now()
	recharge := types.Recharge{
		CreatedBy: session.User.ID,
		CreatedAt: now,
	}
	err = request.apply(&recharge)
	if err != nil {
		return err
	}
	_, err = types.NewRecharge(tx, connection, &recharge)
	if err != nil {
		return apiError(err)
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	r.stats.Invalidate()

	renderCreated(c, newAPIRecharge(s, &recharge, now))
	return nil
}

// Put serves HTTP PUT requests on this resource
func (r *Recharge) Put(c *yarf.Context) error {
	var request apiRechargeRequest
	err := r.DecodeRequest(c, &request)
	if err != nil {
		return err
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

	recharge, err := types.GetRecharge(tx, c.Param("id"))
	if err != nil || !visibility.Gare(s.RechargeGareID(recharge)) {
		return notFound("Recharge")
	}
	err = request.apply(recharge)
	if err != nil {
		return err
	}
	err = recharge.Update(tx)
	if err != nil {
		return apiError(err)
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	r.stats.Invalidate()

	RenderData(c, newAPIRecharge(s, recharge, time.Now()), noCache)
	return nil
}

// Delete serves HTTP DELETE requests on this resource
func (r *Recharge) Delete(c *yarf.Context) error {
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

	recharge, err := types.GetRecharge(tx, c.Param("id"))
	if err != nil || !visibility.Gare(s.RechargeGareID(recharge)) {
		return notFound("Recharge")
	}
	err = recharge.Delete(tx)
	if err != nil {
		return err
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	r.stats.Invalidate()

	RenderData(c, apiMessage{"Recharge deleted successfully"}, noCache)
	return nil
}
