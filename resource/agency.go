package resource

import (
	"strings"
	"time"

	"github.com/fasorail/recharges/compute"
	"github.com/fasorail/recharges/types"
	uuid "github.com/satori/go.uuid"
	"github.com/yarf-framework/yarf"
)

// Agency composites resource
type Agency struct {
	resource
}

type apiAgency struct {
	ID          string    `msgpack:"id" json:"id"`
	Name        string    `msgpack:"name" json:"name"`
	ZoneID      string    `msgpack:"zone_id" json:"zone_id"`
	Description string    `msgpack:"description" json:"description"`
	CreatedAt   time.Time `msgpack:"created_at" json:"created_at"`
}

type apiAgencyWrapper struct {
	apiAgency `msgpack:",inline"`
	ZoneName  string `msgpack:"zone_name" json:"zone_name"`
}

type apiAgencyRequest struct {
	Name        string `msgpack:"name" json:"name"`
	ZoneID      string `msgpack:"zone_id" json:"zone_id"`
	Description string `msgpack:"description" json:"description"`
}

// WithDependencies associates the database, session store and stats handler with this resource
func (r *Agency) WithDependencies(deps Dependencies) *Agency {
	r.with(deps)
	return r
}

func newAPIAgency(s *compute.Snapshot, agency *types.Agency) apiAgencyWrapper {
	return apiAgencyWrapper{
		apiAgency: apiAgency(*agency),
		ZoneName:  s.ZoneName(agency.ZoneID),
	}
}

// Get serves HTTP GET requests on this resource
func (r *Agency) Get(c *yarf.Context) error {
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
		agency, ok := s.Agency(c.Param("id"))
		if !ok || !visibility.Agency(agency.ID) {
			return notFound("Agency")
		}
		RenderData(c, newAPIAgency(s, agency), noCache)
		return nil
	}

	criteria, err := criteriaFromQuery(c.Request.URL.Query(), "id", "zone_id")
	if err != nil {
		return err
	}
	agencies := compute.FilterAgencies(s, visibility.Agencies(s.Agencies), criteria)
	apiagencies := make([]apiAgencyWrapper, len(agencies))
	for i := range agencies {
		apiagencies[i] = newAPIAgency(s, agencies[i])
	}
	RenderData(c, apiagencies, noCache)
	return nil
}

// Post serves HTTP POST requests on this resource
func (r *Agency) Post(c *yarf.Context) error {
	var request apiAgencyRequest
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
	if !canManageZone(session.User, request.ZoneID) {
		return forbidden("Insufficient permissions")
	}
	if strings.TrimSpace(request.Name) == "" {
		return badRequest("Agency name is required")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	agency := types.Agency{
		ID:          id.String(),
		Name:        strings.TrimSpace(request.Name),
		ZoneID:      request.ZoneID,
		Description: request.Description,
		CreatedAt:   time.Now(),
	}
	err = agency.Update(tx)
	if err != nil {
		return apiError(err)
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	r.stats.Invalidate()

	renderCreated(c, apiAgency(agency))
	return nil
}

// Put serves HTTP PUT requests on this resource
func (r *Agency) Put(c *yarf.Context) error {
	var request apiAgencyRequest
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

	agency, err := types.GetAgency(tx, c.Param("id"))
	if err != nil {
		return apiError(err)
	}
	if !canManageAgency(s, session.User, agency.ID) {
		return forbidden("Insufficient permissions")
	}
	if request.ZoneID != "" && request.ZoneID != agency.ZoneID {
		if !canManageZone(session.User, request.ZoneID) {
			return forbidden("Insufficient permissions")
		}
		agency.ZoneID = request.ZoneID
	}
	if strings.TrimSpace(request.Name) == "" {
		return badRequest("Agency name is required")
	}
	agency.Name = strings.TrimSpace(request.Name)
	agency.Description = request.Description

	err = agency.Update(tx)
	if err != nil {
		return apiError(err)
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	r.stats.Invalidate()

	RenderData(c, apiAgency(*agency), noCache)
	return nil
}

// Delete serves HTTP DELETE requests on this resource
func (r *Agency) Delete(c *yarf.Context) error {
	tx, err := r.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	session, err := r.authenticate(c, tx)
	if err != nil {
		return err
	}
	agency, err := types.GetAgency(tx, c.Param("id"))
	if err != nil {
		return apiError(err)
	}
	if !canManageZone(session.User, agency.ZoneID) {
		return forbidden("Insufficient permissions")
	}
	gares, err := agency.Gares(tx)
	if err != nil {
		return err
	}
	if len(gares) > 0 {
		return badRequest("Impossible de supprimer une agence qui contient des gares")
	}
	err = agency.Delete(tx)
	if err != nil {
		return err
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	r.stats.Invalidate()

	RenderData(c, apiMessage{"Agency deleted successfully"}, noCache)
	return nil
}
