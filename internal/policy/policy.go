// Package policy holds the role permission matrix and the vehicle gate-access
// validator. Everything here is pure decision logic; the only I/O is the gate
// existence lookup injected into the validator.
package policy

import (
	"fmt"
	"time"

	dErrors "gatepass/pkg/domain-errors"
)

// VehicleCacheTTL bounds staleness of the read-through vehicle cache. Writes
// invalidate synchronously, so the TTL only matters for external mutations of
// the backing store.
var VehicleCacheTTL = 5 * time.Minute

// Role is an account's permission tier.
type Role string

const (
	RoleSuperAdmin Role = "super-admin"
	RoleAdmin      Role = "admin"
	RoleSecurity   Role = "security"
)

// ParseRole validates and returns a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperAdmin, RoleAdmin, RoleSecurity:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

// Resource identifies a protected resource class.
type Resource string

const (
	ResourceUsers    Resource = "users"
	ResourceVehicles Resource = "vehicles"
	ResourceGates    Resource = "gates"
	ResourceSystem   Resource = "system"
)

// Action identifies an operation on a resource.
type Action string

const (
	ActionCreate       Action = "create"
	ActionRead         Action = "read"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionUpdateDriver Action = "updateDriver"
	ActionTransactions Action = "transactions"
	ActionExportLogs   Action = "exportLogs"
	ActionClearData    Action = "clearData"
)

// permissionMatrix is the single source of truth for role permissions. It is
// built once and never mutated at runtime; HasPermission is an O(1) lookup.
var permissionMatrix = map[Role]map[Resource]map[Action]bool{
	RoleSuperAdmin: {
		ResourceVehicles: {
			ActionCreate: true, ActionRead: true, ActionUpdate: true,
			ActionDelete: true, ActionUpdateDriver: true,
			ActionTransactions: true, ActionExportLogs: true,
		},
		ResourceUsers: {
			ActionCreate: true, ActionRead: true, ActionUpdate: true, ActionDelete: true,
		},
		ResourceGates: {
			ActionCreate: true, ActionRead: true, ActionUpdate: true, ActionDelete: true,
		},
		ResourceSystem: {
			ActionClearData: true,
		},
	},
	RoleAdmin: {
		ResourceVehicles: {
			ActionCreate: true, ActionRead: true, ActionUpdate: true,
			ActionUpdateDriver: true, ActionTransactions: true, ActionExportLogs: true,
		},
		ResourceUsers: {
			ActionCreate: true, ActionRead: true, ActionUpdate: true,
		},
		ResourceGates: {
			ActionCreate: true, ActionRead: true, ActionUpdate: true,
		},
	},
	RoleSecurity: {
		// Gate operators record transactions and reassign the current driver;
		// they cannot touch any other vehicle field.
		ResourceVehicles: {
			ActionRead: true, ActionUpdateDriver: true, ActionTransactions: true,
		},
		ResourceGates: {
			ActionRead: true,
		},
	},
}

// HasPermission reports whether role may perform action on resource.
// Unknown roles, resources, and actions all deny.
func HasPermission(role Role, resource Resource, action Action) bool {
	return permissionMatrix[role][resource][action]
}

// Enforce is the failing variant of HasPermission, used at every mutating
// entry point. The returned error carries the rejected triple so callers can
// surface it without string parsing.
func Enforce(role Role, resource Resource, action Action) error {
	if HasPermission(role, resource, action) {
		return nil
	}
	return dErrors.Newf(dErrors.CodePermissionDenied,
		"role %q may not perform %s on %s", role, action, resource).
		WithMeta("role", string(role)).
		WithMeta("resource", string(resource)).
		WithMeta("action", string(action))
}

// CanManageRole restricts which roles an actor may assign when creating or
// editing a user. Admins can never mint or edit super-admins.
func CanManageRole(acting, target Role) bool {
	switch acting {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return target == RoleAdmin || target == RoleSecurity
	}
	return false
}
