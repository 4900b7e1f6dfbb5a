// Package models contains domain entities and business models for the admin system
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Role is the admin's coarse access tier. The set is closed; unknown
// values are rejected at creation time.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleManager    Role = "manager"
	RoleSupport    Role = "support"
	RoleAnalyst    Role = "analyst"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleManager, RoleSupport, RoleAnalyst:
		return true
	}
	return false
}

// Permission is a single resource:action grant. The set is closed.
type Permission string

const (
	PermProductsView   Permission = "products:view"
	PermProductsCreate Permission = "products:create"
	PermProductsUpdate Permission = "products:update"
	PermProductsDelete Permission = "products:delete"

	PermOrdersView   Permission = "orders:view"
	PermOrdersUpdate Permission = "orders:update"
	PermOrdersDelete Permission = "orders:delete"

	PermCustomersView   Permission = "customers:view"
	PermCustomersUpdate Permission = "customers:update"
	PermCustomersDelete Permission = "customers:delete"

	PermContentView   Permission = "content:view"
	PermContentCreate Permission = "content:create"
	PermContentUpdate Permission = "content:update"
	PermContentDelete Permission = "content:delete"

	PermAnalyticsView Permission = "analytics:view"
	PermReportsView   Permission = "reports:view"

	PermSettingsView   Permission = "settings:view"
	PermSettingsUpdate Permission = "settings:update"

	PermAdminsView   Permission = "admins:view"
	PermAdminsCreate Permission = "admins:create"
	PermAdminsUpdate Permission = "admins:update"
	PermAdminsDelete Permission = "admins:delete"
)

// AllPermissions enumerates every grant in the closed set.
var AllPermissions = []Permission{
	PermProductsView, PermProductsCreate, PermProductsUpdate, PermProductsDelete,
	PermOrdersView, PermOrdersUpdate, PermOrdersDelete,
	PermCustomersView, PermCustomersUpdate, PermCustomersDelete,
	PermContentView, PermContentCreate, PermContentUpdate, PermContentDelete,
	PermAnalyticsView, PermReportsView,
	PermSettingsView, PermSettingsUpdate,
	PermAdminsView, PermAdminsCreate, PermAdminsUpdate, PermAdminsDelete,
}

func (p Permission) IsValid() bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// RoleDefaultPermissions maps each role to the permission set seeded
// onto a new admin. It is consulted only at creation time; request-time
// checks read the permissions stored on the admin row.
var RoleDefaultPermissions = map[Role][]Permission{
	RoleSuperAdmin: nil, // implicit full access, nothing stored
	RoleManager: {
		PermProductsView, PermProductsCreate, PermProductsUpdate, PermProductsDelete,
		PermOrdersView, PermOrdersUpdate, PermOrdersDelete,
		PermCustomersView, PermCustomersUpdate,
		PermContentView, PermContentCreate, PermContentUpdate, PermContentDelete,
		PermAnalyticsView, PermReportsView,
		PermSettingsView,
	},
	RoleSupport: {
		PermProductsView,
		PermOrdersView, PermOrdersUpdate,
		PermCustomersView, PermCustomersUpdate,
		PermContentView,
	},
	RoleAnalyst: {
		PermProductsView,
		PermOrdersView,
		PermCustomersView,
		PermAnalyticsView, PermReportsView,
	},
}

// PermissionList is stored as a jsonb string array.
type PermissionList []Permission

func (l PermissionList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *PermissionList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for PermissionList", value)
	}
	return json.Unmarshal(data, l)
}

func (l PermissionList) Contains(p Permission) bool {
	for _, have := range l {
		if have == p {
			return true
		}
	}
	return false
}

// HasPermission reports whether the admin holds the permission.
// Super admins pass every check implicitly.
func (a *Admin) HasPermission(p Permission) bool {
	if a.Role == RoleSuperAdmin {
		return true
	}
	return a.Permissions.Contains(p)
}

// HasAnyPermission reports whether the admin holds at least one of the
// given permissions. An empty list yields false.
func (a *Admin) HasAnyPermission(perms ...Permission) bool {
	if a.Role == RoleSuperAdmin && len(perms) > 0 {
		return true
	}
	for _, p := range perms {
		if a.Permissions.Contains(p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the admin holds every given
// permission. An empty list is vacuously satisfied.
func (a *Admin) HasAllPermissions(perms ...Permission) bool {
	if a.Role == RoleSuperAdmin {
		return true
	}
	for _, p := range perms {
		if !a.Permissions.Contains(p) {
			return false
		}
	}
	return true
}
