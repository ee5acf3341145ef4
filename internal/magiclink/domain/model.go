package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type MagicLink struct {
	ID        snowflake.ID `json:"id,string" gorm:"primaryKey"`
	CompanyID snowflake.ID `json:"company_id,string" gorm:"uniqueIndex:idx_magic_links_company_creator"`
	LinkID    string       `json:"link_id" gorm:"uniqueIndex"`
	Name      *string      `json:"name,omitempty"`
	IsActive  bool         `json:"is_active"`
	CreatedBy snowflake.ID `json:"created_by,string" gorm:"uniqueIndex:idx_magic_links_company_creator"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (MagicLink) TableName() string {
	return "magic_links"
}

// PublicLink is the shape an unauthenticated visitor sees when opening
// a share URL. It deliberately omits who created the link.
type PublicLink struct {
	LinkID      string `json:"link_id"`
	CompanyName string `json:"company_name"`
}
