package resource

import (
	"strings"
	"time"

	"github.com/fasorail/recharges/compute"
	"github.com/fasorail/recharges/types"
	uuid "github.com/satori/go.uuid"
	"github.com/yarf-framework/yarf"
)

// Connection composites resource
type Connection struct {
	resource
}

type apiConnection struct {
	ID               string                 `msgpack:"id" json:"id"`
	LineNumber       string                 `msgpack:"line_number" json:"line_number"`
	GareID           string                 `msgpack:"gare_id" json:"gare_id"`
	Operator         string                 `msgpack:"operator" json:"operator"`
	OperatorType     types.OperatorType     `msgpack:"operator_type" json:"operator_type"`
	ConnectionType   string                 `msgpack:"connection_type" json:"connection_type"`
	Status           types.ConnectionStatus `msgpack:"status" json:"status"`
	LastRechargeDate *time.Time             `msgpack:"last_recharge_date" json:"last_recharge_date"`
	ExpiryDate       *time.Time             `msgpack:"expiry_date" json:"expiry_date"`
	Description      string                 `msgpack:"description" json:"description"`
	CreatedAt        time.Time              `msgpack:"created_at" json:"created_at"`
}

type apiConnectionWrapper struct {
	apiConnection `msgpack:",inline"`
	GareName      string `msgpack:"gare_name" json:"gare_name"`
}

type apiConnectionRequest struct {
	LineNumber     string                 `msgpack:"line_number" json:"line_number"`
	GareID         string                 `msgpack:"gare_id" json:"gare_id"`
	Operator       string                 `msgpack:"operator" json:"operator"`
	ConnectionType string                 `msgpack:"connection_type" json:"connection_type"`
	Status         types.ConnectionStatus `msgpack:"status" json:"status"`
	Description    string                 `msgpack:"description" json:"description"`
}

// WithDependencies associates the database, session store and stats handler with this resource
func (r *Connection) WithDependencies(deps Dependencies) *Connection {
	r.with(deps)
	return r
}

func newAPIConnection(s *compute.Snapshot, connection *types.Connection) apiConnectionWrapper {
	return apiConnectionWrapper{
		apiConnection: apiConnection(*connection),
		GareName:      s.GareName(connection.GareID),
	}
}

// apply validates request and copies it into connection
func (request *apiConnectionRequest) apply(connection *types.Connection) error {
	request.LineNumber = strings.TrimSpace(request.LineNumber)
	if request.LineNumber == "" {
		return badRequest("Line number is required")
	}
	operatorType, ok := types.OperatorTypeOf(request.Operator)
	if !ok {
		return badRequest("Unknown operator: " + request.Operator)
	}
	if request.Status == "" {
		request.Status = types.ConnectionActive
	}
	if !request.Status.Valid() {
		return badRequest("Invalid status: " + string(request.Status))
	}

	connection.LineNumber = request.LineNumber
	connection.GareID = request.GareID
	connection.Operator = request.Operator
	connection.OperatorType = operatorType
	connection.ConnectionType = request.ConnectionType
	connection.Status = request.Status
	connection.Description = request.Description
	return nil
}

// Get serves HTTP GET requests on this resource
func (r *Connection) Get(c *yarf.Context) error {
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

	if c.Param("id") != "" {
		connection, ok := s.Connection(c.Param("id"))
		if !ok || !visibility.Gare(connection.GareID) {
			return notFound("Connection")
		}
		RenderData(c, newAPIConnection(s, connection), noCache)
		return nil
	}

	criteria, err := criteriaFromQuery(c.Request.URL.Query(), "id", "gare_id", "agency_id", "zone_id",
		"operator", "operator_type", "connection_type", "status")
	if err != nil {
		return err
	}
	connections := compute.FilterConnections(s, visibility.Connections(s.Connections), criteria)
	apiconnections := make([]apiConnectionWrapper, len(connections))
	for i := range connections {
		apiconnections[i] = newAPIConnection(s, connections[i])
	}
	RenderData(c, apiconnections, noCache)
	return nil
}

// Post serves HTTP POST requests on this resource
func (r *Connection) Post(c *yarf.Context) error {
	var request apiConnectionRequest
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
	_, visibility, err := r.visibility(tx, session)
	if err != nil {
		return err
	}
	if !visibility.Gare(request.GareID) {
		return forbidden("Insufficient permissions")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	connection := types.Connection{
		ID:        id.String(),
		CreatedAt: time.Now(),
	}
	err = request.apply(&connection)
	if err != nil {
		return err
	}
	err = connection.Update(tx)
	if err != nil {
		return apiError(err)
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	r.stats.Invalidate()

	renderCreated(c, apiConnection(connection))
	return nil
}

// Put serves HTTP PUT requests on this resource
func (r *Connection) Put(c *yarf.Context) error {
	var request apiConnectionRequest
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
	_, visibility, err := r.visibility(tx, session)
	if err != nil {
		return err
	}

	connection, err := types.GetConnection(tx, c.Param("id"))
	if err != nil {
		return apiError(err)
	}
	if request.GareID == "" {
		request.GareID = connection.GareID
	}
	if !visibility.Gare(connection.GareID) || !visibility.Gare(request.GareID) {
		return forbidden("Insufficient permissions")
	}
	err = request.apply(connection)
	if err != nil {
		return err
	}
	err = connection.Update(tx)
	if err != nil {
		return apiError(err)
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	r.stats.Invalidate()

	RenderData(c, apiConnection(*connection), noCache)
	return nil
}

// Delete serves HTTP DELETE requests on this resource
func (r *Connection) Delete(c *yarf.Context) error {
	tx, err := r.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	session, err := r.authenticate(c, tx)
	if err != nil {
		return err
	}
	_, visibility, err := r.visibility(tx, session)
	if err != nil {
		return err
	}

	connection, err := types.GetConnection(tx, c.Param("id"))
	if err != nil {
		return apiError(err)
	}
	if !visibility.Gare(connection.GareID) {
		return forbidden("Insufficient permissions")
	}

	recharges, err := connection.Recharges(tx)
	if err != nil {
		return err
	}
	if hasRunningRecharges(recharges, time.Now()) {
		return badRequest("Impossible de supprimer une ligne avec des recharges actives")
	}

	err = connection.Delete(tx)
	if err != nil {
		return err
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	r.stats.Invalidate()

	RenderData(c, apiMessage{"Connection deleted successfully"}, noCache)
	return nil
}

// hasRunningRecharges returns whether any of the recharges is active or expiring soon at now
func hasRunningRecharges(recharges []*types.Recharge, now time.Time) bool {
	for _, recharge := range recharges {
		switch compute.StatusOf(recharge, now) {
		case compute.StatusActive, compute.StatusExpiringSoon:
			return true
		}
	}
	return false
}
