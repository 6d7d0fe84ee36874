// README: User and department records plus the acting-identity triple.
package identity

import (
	"time"

	"motorpool/internal/types"
)

type Role string

const (
	RoleEmployee   Role = "employee"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
	RoleInspector  Role = "inspector"
)

// VIPDepartmentName marks the department whose ride edits bypass the
// standard approval lock.
const VIPDepartmentName = "VIP"

type User struct {
	EmployeeID       types.ID
	Name             string
	Email            string
	Role             Role
	DepartmentID     *types.ID
	LicenseNumber    string
	LicenseExpiresAt *time.Time
	HasPendingRebook bool
}

type Department struct {
	ID           types.ID
	Name         string
	SupervisorID types.ID
}

// Actor is the verified (user, role, department) triple attached to a request.
type Actor struct {
	UserID       types.ID
	Role         Role
	DepartmentID types.ID
}
