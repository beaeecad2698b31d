package resource

import (
	"strings"
	"time"

	"github.com/fasorail/recharges/compute"
	"github.com/fasorail/recharges/types"
	uuid "github.com/satori/go.uuid"
	"github.com/yarf-framework/yarf"
)

// Zone composites resource
type Zone struct {
	resource
}

type apiZone struct {
	ID          string    `msgpack:"id" json:"id"`
	Name        string    `msgpack:"name" json:"name"`
	Description string    `msgpack:"description" json:"description"`
	CreatedAt   time.Time `msgpack:"created_at" json:"created_at"`
}

type apiZoneRequest struct {
	Name        string `msgpack:"name" json:"name"`
	Description string `msgpack:"description" json:"description"`
}

// WithDependencies associates the database, session store and stats handler with this resource
func (r *Zone) WithDependencies(deps Dependencies) *Zone {
	r.with(deps)
	return r
}

// Get serves HTTP GET requests on this resource
func (r *Zone) Get(c *yarf.Context) error {
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
		zone, ok := s.Zone(c.Param("id"))
		if !ok || !visibility.Zone(zone.ID) {
			return notFound("Zone")
		}
		RenderData(c, apiZone(*zone), noCache)
		return nil
	}

	criteria, err := criteriaFromQuery(c.Request.URL.Query(), "id")
	if err != nil {
		return err
	}
	zones := compute.FilterZones(s, visibility.Zones(s.Zones), criteria)
	apizones := make([]apiZone, len(zones))
	for i := range zones {
		apizones[i] = apiZone(*zones[i])
	}
	RenderData(c, apizones, noCache)
	return nil
}

// Post serves HTTP POST requests on this resource
func (r *Zone) Post(c *yarf.Context) error {
	var request apiZoneRequest
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
	if session.User.Role != types.RoleSuperAdmin {
		return forbidden("Only Super Admin can create zones")
	}
	if strings.TrimSpace(request.Name) == "" {
		return badRequest("Zone name is required")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	zone := types.Zone{
		ID:          id.String(),
		Name:        strings.TrimSpace(request.Name),
		Description: request.Description,
		CreatedAt:   time.Now(),
	}
	err = zone.Update(tx)
	if err != nil {
		return apiError(err)
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	r.stats.Invalidate()

	renderCreated(c, apiZone(zone))
	return nil
}

// Put serves HTTP PUT requests on this resource
func (r *Zone) Put(c *yarf.Context) error {
	var request apiZoneRequest
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
	if session.User.Role != types.RoleSuperAdmin {
		return forbidden("Only Super Admin can update zones")
	}

	zone, err := types.GetZone(tx, c.Param("id"))
	if err != nil {
		return apiError(err)
	}
	if strings.TrimSpace(request.Name) == "" {
		return badRequest("Zone name is required")
	}
	zone.Name = strings.TrimSpace(request.Name)
	zone.Description = request.Description
	err = zone.Update(tx)
	if err != nil {
		return apiError(err)
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	r.stats.Invalidate()

	RenderData(c, apiZone(*zone), noCache)
	return nil
}

// Delete serves HTTP DELETE requests on this resource
func (r *Zone) Delete(c *yarf.Context) error {
	tx, err := r.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	session, err := r.authenticate(c, tx)
	if err != nil {
		return err
	}
	if session.User.Role != types.RoleSuperAdmin {
		return forbidden("Only Super Admin can delete zones")
	}

	zone, err := types.GetZone(tx, c.Param("id"))
	if err != nil {
		return apiError(err)
	}
	agencies, err := zone.Agencies(tx)
	if err != nil {
		return err
	}
	if len(agencies) > 0 {
		return badRequest("Impossible de supprimer une zone qui contient des agences")
	}
	err = zone.Delete(tx)
	if err != nil {
		return err
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	r.stats.Invalidate()

	RenderData(c, apiMessage{"Zone deleted successfully"}, noCache)
	return nil
}
