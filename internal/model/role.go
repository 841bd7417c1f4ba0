package model

import "slices"

// Role is the closed set of identity roles.
type Role string

const (
	// RoleUser is a job seeker
	RoleUser Role = "user"
	// RoleCompanyHR manages companies and job posts
	RoleCompanyHR Role = "company_HR"
	// RoleAdmin is the admin-like role, only created by seeding or cmd/create-admin
	RoleAdmin Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleUser, RoleCompanyHR, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return RoleAllowed(r, Roles...)
}

// RoleAllowed is the authorization decision: true when role is in required.
// An empty required set allows nobody.
func RoleAllowed(role Role, required ...Role) bool {
	return slices.Contains(required, role)
}

// Status is the online/offline presence of an identity.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)
