package resource

import (
	"github.com/fasorail/recharges/compute"
	"github.com/fasorail/recharges/types"
	"github.com/thoas/go-funk"
)

// canManageZone returns whether user may create, change or remove agencies of the zone
func canManageZone(user *types.User, zoneID string) bool {
	switch user.Role {
	case types.RoleSuperAdmin:
		return true
	case types.RoleZoneAdmin:
		return funk.ContainsString(user.AssignedZones, zoneID)
	}
	return false
}

// canManageAgency returns whether user may change the agency and create,
// change or remove its gares
func canManageAgency(s *compute.Snapshot, user *types.User, agencyID string) bool {
	if !user.Role.AtLeast(types.RoleZoneAdmin) {
		return false
	}
	return canManageZone(user, s.AgencyZoneID(agencyID)) ||
		funk.ContainsString(user.AssignedAgencies, agencyID)
}
