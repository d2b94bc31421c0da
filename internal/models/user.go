package models

// UserRole represents the roles known to the department portal.
type UserRole string

const (
	RoleHOD     UserRole = "hod"
	RoleFaculty UserRole = "faculty"
	RoleStudent UserRole = "student"
)

// RoleAll is the targeting tag addressing every audience. It is not an
// actor role; it only appears in announcement targeting.
const RoleAll = "all"

// UserInfo carries the public identity attributes of an authenticated user.
type UserInfo struct {
	ID       string   `json:"id"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
	Avatar   string   `json:"avatar,omitempty"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
