package compute

import (
	"log"
	"time"

	"github.com/fasorail/recharges/types"
	"github.com/gbl08ma/sqalx"
	cache "github.com/patrickmn/go-cache"
)

var rootSqalxNode sqalx.Node
var mainLog *log.Logger

// Initialize initializes the package
func Initialize(snode sqalx.Node, log *log.Logger) {
	rootSqalxNode = snode
	mainLog = log
}

const snapshotCacheKey = "snapshot"

// StatsHandler keeps the latest snapshot for a short while, so that the
// dashboard, lists and reports requested in quick succession share one load
type StatsHandler struct {
	cache *cache.Cache
}

// NewStatsHandler returns a new, initialized StatsHandler whose snapshots
// are reused for up to ttl
func NewStatsHandler(ttl time.Duration) *StatsHandler {
	return &StatsHandler{
		cache: cache.New(ttl, 2*ttl),
	}
}

// Snapshot returns the cached snapshot, loading a new one if needed
func (h *StatsHandler) Snapshot(node sqalx.Node) (*Snapshot, error) {
	if value, present := h.cache.Get(snapshotCacheKey); present {
		return value.(*Snapshot), nil
	}
	s, err := LoadSnapshot(node)
	if err != nil {
		return nil, err
	}
	h.cache.SetDefault(snapshotCacheKey, s)
	return s, nil
}

// Invalidate drops the cached snapshot. It must be called after every write.
func (h *StatsHandler) Invalidate() {
	h.cache.Delete(snapshotCacheKey)
}

// Dashboard computes the dashboard figures, as seen at now, over the part
// of the hierarchy user can see
func (h *StatsHandler) Dashboard(node sqalx.Node, user *types.User, now time.Time) (DashboardStats, error) {
	tx, err := node.Beginx()
	if err != nil {
		return DashboardStats{}, err
	}
	defer tx.Commit() // read-only tx

	s, err := h.Snapshot(tx)
	if err != nil {
		return DashboardStats{}, err
	}
	alerts, err := types.GetAlerts(tx)
	if err != nil {
		return DashboardStats{}, err
	}
	visibility := VisibilityFor(user, s)
	return Dashboard(visibility.Snapshot(s), visibility.Alerts(s, alerts), now), nil
}

// Report computes the report of the given scope as seen at now, over the
// part of the hierarchy user can see, so that scopes the user cannot see
// are not found. It returns the report along with the
// restricted snapshot it was computed from.
func (h *StatsHandler) Report(node sqalx.Node, user *types.User, kind ScopeKind, id string, now time.Time) (*Report, *Snapshot, error) {
	s, err := h.Snapshot(node)
	if err != nil {
		return nil, nil, err
	}
	s = VisibilityFor(user, s).Snapshot(s)
	report, err := BuildReport(s, kind, id, now)
	if err != nil {
		return nil, nil, err
	}
	return report, s, nil
}
