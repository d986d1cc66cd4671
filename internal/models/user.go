package models

// Role distinguishes the two principals the dashboard knows about.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// IsValidRole reports whether r is a known role.
func IsValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleEmployee
}

// User is the authenticated principal: an account row plus the profile
// fields the dashboard renders next to it.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	Department string `json:"department"`
	EmployeeID string `json:"employeeId,omitempty"` // empty for admins without a profile
}

// Credentials is a stored account row. PasswordHash never leaves the
// repository layer.
type Credentials struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
}
