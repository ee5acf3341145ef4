package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is the position a user holds inside a company. Unknown values
// coming from storage decode as RoleUnknown rather than failing.
type Role string

const (
	RoleUnknown Role = "unknown"
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
)

func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleOwner, RoleAdmin, RoleManager:
		return Role(raw)
	default:
		return RoleUnknown
	}
}

func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleManager
}

type Company struct {
	ID        snowflake.ID `json:"id,string" gorm:"primaryKey"`
	Name      string       `json:"name"`
	Slug      string       `json:"slug" gorm:"uniqueIndex"`
	CreatedBy snowflake.ID `json:"created_by,string"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (Company) TableName() string {
	return "companies"
}

type Manager struct {
	ID        snowflake.ID `json:"id,string" gorm:"primaryKey"`
	UserID    snowflake.ID `json:"user_id,string" gorm:"uniqueIndex:idx_managers_user_company"`
	CompanyID snowflake.ID `json:"company_id,string" gorm:"uniqueIndex:idx_managers_user_company"`
	Role      Role         `json:"role"`
	CreatedAt time.Time    `json:"created_at"`
}

func (Manager) TableName() string {
	return "managers"
}

// UserCompany is a company joined with the role the caller holds in it.
type UserCompany struct {
	Company
	Role Role `json:"role"`
}

// ManagerView carries the membership row together with the member's
// denormalized display fields for listing screens.
type ManagerView struct {
	ID          snowflake.ID `json:"id,string"`
	UserID      snowflake.ID `json:"user_id,string"`
	CompanyID   snowflake.ID `json:"company_id,string"`
	Role        Role         `json:"role"`
	DisplayName string       `json:"display_name"`
	Email       *string      `json:"email,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
