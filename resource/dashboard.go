package resource

import (
	"time"

	"github.com/yarf-framework/yarf"
)

// Dashboard composites resource
type Dashboard struct {
	resource
}

// WithDependencies associates the database, session store and stats handler with this resource
func (r *Dashboard) WithDependencies(deps Dependencies) *Dashboard {
	r.with(deps)
	return r
}

// Get serves HTTP GET requests on this resource
func (r *Dashboard) Get(c *yarf.Context) error {
	tx, err := r.Beginx()
	if err != nil {
		return err
	}
	defer tx.Commit() // read-only tx

	session, err := r.authenticate(c, tx)
	if err != nil {
		return err
	}
	stats, err := r.stats.Dashboard(tx, session.User, time.Now())
	if err != nil {
		return err
	}
	RenderData(c, stats, "max-age=10")
	return nil
}
