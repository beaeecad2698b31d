package resource

import (
	"strings"
	"time"

	"github.com/fasorail/recharges/compute"
	"github.com/fasorail/recharges/types"
	uuid "github.com/satori/go.uuid"
	"github.com/yarf-framework/yarf"
)

// Gare composites resource
type Gare struct {
	resource
}

type apiGare struct {
	ID          string    `msgpack:"id" json:"id"`
	Name        string    `msgpack:"name" json:"name"`
	AgencyID    string    `msgpack:"agency_id" json:"agency_id"`
	Description string    `msgpack:"description" json:"description"`
	CreatedAt   time.Time `msgpack:"created_at" json:"created_at"`
}

type apiGareWrapper struct {
	apiGare    `msgpack:",inline"`
	AgencyName string `msgpack:"agency_name" json:"agency_name"`
	ZoneID     string `msgpack:"zone_id" json:"zone_id"`
	ZoneName   string `msgpack:"zone_name" json:"zone_name"`
}

type apiGareRequest struct {
	Name        string `msgpack:"name" json:"name"`
	AgencyID    string `msgpack:"agency_id" json:"agency_id"`
	Description string `msgpack:"description" json:"description"`
}

// WithDependencies associates the database, session store and stats handler with this resource
func (r *Gare) WithDependencies(deps Dependencies) *Gare {
	r.with(deps)
	return r
}

func newAPIGare(s *compute.Snapshot, gare *types.Gare) apiGareWrapper {
	zoneID := s.AgencyZoneID(gare.AgencyID)
	return apiGareWrapper{
		apiGare:    apiGare(*gare),
		AgencyName: s.AgencyName(gare.AgencyID),
		ZoneID:     zoneID,
		ZoneName:   s.ZoneName(zoneID),
	}
}

// Get serves HTTP GET requests on this resource
func (r *Gare) Get(c *yarf.Context) error {
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
		gare, ok := s.Gare(c.Param("id"))
		if !ok || !visibility.Gare(gare.ID) {
			return notFound("Gare")
		}
		RenderData(c, newAPIGare(s, gare), noCache)
		return nil
	}

	criteria, err := criteriaFromQuery(c.Request.URL.Query(), "id", "agency_id", "zone_id")
	if err != nil {
		return err
	}
	gares := compute.FilterGares(s, visibility.Gares(s.Gares), criteria)
	apigares := make([]apiGareWrapper, len(gares))
	for i := range gares {
		apigares[i] = newAPIGare(s, gares[i])
	}
	RenderData(c, apigares, noCache)
	return nil
}

// Post serves HTTP POST requests on this resource
func (r *Gare) Post(c *yarf.Context) error {
	var request apiGareRequest
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
	s, err := r.stats.Snapshot(tx)
	if err != nil {
		return err
	}
	if !canManageAgency(s, session.User, request.AgencyID) {
		return forbidden("Insufficient permissions")
	}
	if strings.TrimSpace(request.Name) == "" {
		return badRequest("Gare name is required")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	gare := types.Gare{
		ID:          id.String(),
		Name:        strings.TrimSpace(request.Name),
		AgencyID:    request.AgencyID,
		Description: request.Description,
		CreatedAt:   time.Now(),
	}
	err = gare.Update(tx)
	if err != nil {
		return apiError(err)
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	r.stats.Invalidate()

	renderCreated(c, apiGare(gare))
	return nil
}

// Put serves HTTP PUT requests on this resource
func (r *Gare) Put(c *yarf.Context) error {
	var request apiGareRequest
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
	s, err := r.stats.Snapshot(tx)
	if err != nil {
		return err
	}

	gare, err := types.GetGare(tx, c.Param("id"))
	if err != nil {
		return apiError(err)
	}
	if !canManageAgency(s, session.User, gare.AgencyID) {
		return forbidden("Insufficient permissions")
	}
	if request.AgencyID != "" && request.AgencyID != gare.AgencyID {
		if !canManageAgency(s, session.User, request.AgencyID) {
			return forbidden("Insufficient permissions")
		}
		gare.AgencyID = request.AgencyID
	}
	if strings.TrimSpace(request.Name) == "" {
		return badRequest("Gare name is required")
	}
	gare.Name = strings.TrimSpace(request.Name)
	gare.Description = request.Description

	err = gare.Update(tx)
	if err != nil {
		return apiError(err)
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	r.stats.Invalidate()

	RenderData(c, apiGare(*gare), noCache)
	return nil
}

// Delete serves HTTP DELETE requests on this resource
func (r *Gare) Delete(c *yarf.Context) error {
	tx, err := r.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	session, err := r.authenticate(c, tx)
	if err != nil {
		return err
	}
	s, err := r.stats.Snapshot(tx)
	if err != nil {
		return err
	}
	gare, err := types.GetGare(tx, c.Param("id"))
	if err != nil {
		return apiError(err)
	}
	if !canManageAgency(s, session.User, gare.AgencyID) {
		return forbidden("Insufficient permissions")
	}
	connections, err := gare.Connections(tx)
	if err != nil {
		return err
	}
	if len(connections) > 0 {
		return badRequest("Impossible de supprimer une gare qui contient des lignes")
	}
	err = gare.Delete(tx)
	if err != nil {
		return err
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	r.stats.Invalidate()

	RenderData(c, apiMessage{"Gare deleted successfully"}, noCache)
	return nil
}
