package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gatepass/pkg/domain-errors"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"super-admin", "admin", "security"} {
		role, err := ParseRole(valid)
		require.NoError(t, err)
		assert.Equal(t, Role(valid), role)
	}

	_, err := ParseRole("root")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		resource Resource
		action   Action
		want     bool
	}{
		{"super-admin deletes vehicles", RoleSuperAdmin, ResourceVehicles, ActionDelete, true},
		{"super-admin clears data", RoleSuperAdmin, ResourceSystem, ActionClearData, true},
		{"admin creates vehicles", RoleAdmin, ResourceVehicles, ActionCreate, true},
		{"admin cannot delete vehicles", RoleAdmin, ResourceVehicles, ActionDelete, false},
		{"admin cannot clear data", RoleAdmin, ResourceSystem, ActionClearData, false},
		{"admin exports logs", RoleAdmin, ResourceVehicles, ActionExportLogs, true},
		{"admin manages gates", RoleAdmin, ResourceGates, ActionCreate, true},
		{"security reads vehicles", RoleSecurity, ResourceVehicles, ActionRead, true},
		{"security logs transactions", RoleSecurity, ResourceVehicles, ActionTransactions, true},
		{"security updates driver", RoleSecurity, ResourceVehicles, ActionUpdateDriver, true},
		{"security cannot create vehicles", RoleSecurity, ResourceVehicles, ActionCreate, false},
		{"security cannot update vehicles", RoleSecurity, ResourceVehicles, ActionUpdate, false},
		{"security cannot export logs", RoleSecurity, ResourceVehicles, ActionExportLogs, false},
		{"security cannot manage users", RoleSecurity, ResourceUsers, ActionRead, false},
		{"security reads gates", RoleSecurity, ResourceGates, ActionRead, true},
		{"security cannot create gates", RoleSecurity, ResourceGates, ActionCreate, false},
		{"unknown role has nothing", Role("root"), ResourceVehicles, ActionRead, false},
		{"empty role has nothing", Role(""), ResourceVehicles, ActionRead, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.role, tt.resource, tt.action))
		})
	}
}

func TestEnforce(t *testing.T) {
	require.NoError(t, Enforce(RoleAdmin, ResourceVehicles, ActionCreate))

	err := Enforce(RoleSecurity, ResourceVehicles, ActionCreate)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodePermissionDenied))
	assert.Equal(t, "security", dErrors.MetaValue(err, "role"))
	assert.Equal(t, "vehicles", dErrors.MetaValue(err, "resource"))
	assert.Equal(t, "create", dErrors.MetaValue(err, "action"))
}

func TestCanManageRole(t *testing.T) {
	assert.True(t, CanManageRole(RoleSuperAdmin, RoleSuperAdmin))
	assert.True(t, CanManageRole(RoleSuperAdmin, RoleAdmin))
	assert.True(t, CanManageRole(RoleSuperAdmin, RoleSecurity))

	assert.False(t, CanManageRole(RoleAdmin, RoleSuperAdmin))
	assert.True(t, CanManageRole(RoleAdmin, RoleAdmin))
	assert.True(t, CanManageRole(RoleAdmin, RoleSecurity))

	assert.False(t, CanManageRole(RoleSecurity, RoleSecurity))
	assert.False(t, CanManageRole(RoleSecurity, RoleAdmin))
}
