// Package models contains domain entities and business models for the admin system
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleIsValid(t *testing.T) {
	tests := []struct {
		name  string
		role  Role
		valid bool
	}{
		{"super admin", RoleSuperAdmin, true},
		{"manager", RoleManager, true},
		{"support", RoleSupport, true},
		{"analyst", RoleAnalyst, true},
		{"unknown role", Role("owner"), false},
		{"empty role", Role(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.role.IsValid())
		})
	}
}

func TestPermissionIsValid(t *testing.T) {
	for _, p := range AllPermissions {
		assert.True(t, p.IsValid(), "expected %s to be valid", p)
	}
	assert.False(t, Permission("products:publish").IsValid())
	assert.False(t, Permission("orders:create").IsValid())
	assert.False(t, Permission("").IsValid())
}

func TestRoleDefaultPermissionsAreKnown(t *testing.T) {
	for role, perms := range RoleDefaultPermissions {
		require.True(t, role.IsValid())
		for _, p := range perms {
			assert.True(t, p.IsValid(), "role %s carries unknown permission %s", role, p)
		}
	}
	// Super admins get implicit access, nothing is stored on the row
	assert.Empty(t, RoleDefaultPermissions[RoleSuperAdmin])
}

func TestHasPermission(t *testing.T) {
	superAdmin := &Admin{Role: RoleSuperAdmin, Permissions: PermissionList{}}
	manager := &Admin{Role: RoleManager, Permissions: PermissionList{PermProductsView, PermOrdersView}}

	// Super admins pass every check regardless of their stored set
	for _, p := range AllPermissions {
		assert.True(t, superAdmin.HasPermission(p))
	}

	assert.True(t, manager.HasPermission(PermProductsView))
	assert.False(t, manager.HasPermission(PermAdminsCreate))
}

func TestHasAllPermissions(t *testing.T) {
	manager := &Admin{Role: RoleManager, Permissions: PermissionList{PermProductsView, PermOrdersView}}
	superAdmin := &Admin{Role: RoleSuperAdmin}

	tests := []struct {
		name  string
		admin *Admin
		perms []Permission
		want  bool
	}{
		{"empty list is vacuously satisfied", manager, nil, true},
		{"holds all requested", manager, []Permission{PermProductsView, PermOrdersView}, true},
		{"missing one of several", manager, []Permission{PermProductsView, PermAdminsView}, false},
		{"missing single", manager, []Permission{PermSettingsUpdate}, false},
		{"super admin always passes", superAdmin, []Permission{PermAdminsDelete, PermSettingsUpdate}, true},
		{"super admin with empty list", superAdmin, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.admin.HasAllPermissions(tt.perms...))
		})
	}
}

func TestHasAnyPermission(t *testing.T) {
	manager := &Admin{Role: RoleManager, Permissions: PermissionList{PermProductsView}}
	superAdmin := &Admin{Role: RoleSuperAdmin}

	tests := []struct {
		name  string
		admin *Admin
		perms []Permission
		want  bool
	}{
		{"empty list yields false", manager, nil, false},
		{"empty list yields false for super admin", superAdmin, nil, false},
		{"holds one of several", manager, []Permission{PermAdminsView, PermProductsView}, true},
		{"holds none", manager, []Permission{PermAdminsView, PermSettingsUpdate}, false},
		{"super admin with non-empty list", superAdmin, []Permission{PermAdminsView}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.admin.HasAnyPermission(tt.perms...))
		})
	}
}

func TestPermissionListContains(t *testing.T) {
	list := PermissionList{PermProductsView, PermOrdersView}

	assert.True(t, list.Contains(PermProductsView))
	assert.False(t, list.Contains(PermProductsDelete))
	assert.False(t, PermissionList(nil).Contains(PermProductsView))
}

func TestPermissionListValueScan(t *testing.T) {
	list := PermissionList{PermProductsView, PermOrdersView}

	value, err := list.Value()
	require.NoError(t, err)
	assert.Equal(t, `["products:view","orders:view"]`, value)

	var scanned PermissionList
	require.NoError(t, scanned.Scan([]byte(`["products:view","orders:view"]`)))
	assert.Equal(t, list, scanned)

	var fromString PermissionList
	require.NoError(t, fromString.Scan(`["admins:view"]`))
	assert.Equal(t, PermissionList{PermAdminsView}, fromString)

	var fromNil PermissionList
	require.NoError(t, fromNil.Scan(nil))
	assert.Nil(t, fromNil)

	nilValue, err := PermissionList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", nilValue)

	assert.Error(t, scanned.Scan(42))
}

