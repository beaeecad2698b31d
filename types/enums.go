package types

// OperatorType is the kind of network an operator provides
type OperatorType string

const (
	// OperatorTypeMobile is a mobile data operator
	OperatorTypeMobile OperatorType = "mobile"
	// OperatorTypeFibre is a fixed fibre operator
	OperatorTypeFibre OperatorType = "fibre"
)

// Operators lists the known operators in display order
var Operators = []string{
	"Orange",
	"Telecel",
	"Moov",
	"Onatel Fibre",
	"Orange Fibre",
	"Telecel Fibre",
	"Canalbox",
	"Faso Net",
	"Wayodi",
}

var operatorTypes = map[string]OperatorType{
	"Orange":        OperatorTypeMobile,
	"Telecel":       OperatorTypeMobile,
	"Moov":          OperatorTypeMobile,
	"Onatel Fibre":  OperatorTypeFibre,
	"Orange Fibre":  OperatorTypeFibre,
	"Telecel Fibre": OperatorTypeFibre,
	"Canalbox":      OperatorTypeFibre,
	"Faso Net":      OperatorTypeFibre,
	"Wayodi":        OperatorTypeFibre,
}

// OperatorTypeOf returns the type of the given operator and whether the
// operator is known
func OperatorTypeOf(operator string) (OperatorType, bool) {
	t, ok := operatorTypes[operator]
	return t, ok
}

// PaymentType is how a recharge is paid for
type PaymentType string

const (
	// PaymentPrepaid is a prepaid bundle
	PaymentPrepaid PaymentType = "prepaid"
	// PaymentPostpaid is a postpaid subscription period
	PaymentPostpaid PaymentType = "postpaid"
)

// Valid returns whether p is a known payment type
func (p PaymentType) Valid() bool {
	return p == PaymentPrepaid || p == PaymentPostpaid
}

// ConnectionStatus is the administrative status of a connection line
type ConnectionStatus string

const (
	ConnectionActive    ConnectionStatus = "active"
	ConnectionInactive  ConnectionStatus = "inactive"
	ConnectionSuspended ConnectionStatus = "suspended"
)

// Valid returns whether s is a known connection status
func (s ConnectionStatus) Valid() bool {
	switch s {
	case ConnectionActive, ConnectionInactive, ConnectionSuspended:
		return true
	}
	return false
}

// AlertStatus is the delivery status of an alert
type AlertStatus string

const (
	AlertPending   AlertStatus = "pending"
	AlertSent      AlertStatus = "sent"
	AlertDismissed AlertStatus = "dismissed"
)

// Role is the role of a user
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleZoneAdmin  Role = "zone_admin"
	RoleFieldAgent Role = "field_agent"
)

// Valid returns whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleZoneAdmin, RoleFieldAgent:
		return true
	}
	return false
}

// AtLeast returns whether r grants at least the privileges of other
func (r Role) AtLeast(other Role) bool {
	return r.rank() >= other.rank()
}

func (r Role) rank() int {
	switch r {
	case RoleSuperAdmin:
		return 3
	case RoleZoneAdmin:
		return 2
	case RoleFieldAgent:
		return 1
	}
	return 0
}
