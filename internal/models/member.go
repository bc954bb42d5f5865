package models

import "time"

// MemberRole represents the available roles for the RBAC system.
type MemberRole string

const (
	RoleAdmin  MemberRole = "ADMIN"
	RoleStaff  MemberRole = "STAFF"
	RoleMember MemberRole = "MEMBER"
)

// Member mirrors a row of the identity platform's members table. This service
// reads members; account lifecycle is owned by the identity platform.
type Member struct {
	ID        string     `db:"id" json:"id"`
	Email     string     `db:"email" json:"email"`
	FullName  string     `db:"full_name" json:"full_name"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	Role      MemberRole `db:"role" json:"role"`
	Active    bool       `db:"active" json:"active"`
	Verified  bool       `db:"verified" json:"verified"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// MemberFilter captures filtering criteria for listing members.
type MemberFilter struct {
	Role      *MemberRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
