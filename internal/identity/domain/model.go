// Package domain contains core types for the identity service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// User represents an account. Anonymous users have no email and no password
// until an invitation or a password sign-up claims them.
type User struct {
	ID           snowflake.ID      `gorm:"primaryKey"`
	ExternalID   string            `gorm:"type:text;not null;uniqueIndex"`
	Email        *string           `gorm:"column:email;index"`
	DisplayName  string            `gorm:"column:display_name;type:text"`
	PasswordHash *string           `gorm:"type:text"`
	IsAnonymous  bool              `gorm:"column:is_anonymous;not null"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session represents a persisted login session.
type Session struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	UserID           snowflake.ID `gorm:"column:user_id;not null;index"`
	SessionTokenHash string       `gorm:"column:session_token_hash;type:text;not null;uniqueIndex"`
	UserAgent        string       `gorm:"column:user_agent;type:text"`
	IPAddress        string       `gorm:"column:ip_address;type:text"`
	ExpiresAt        time.Time    `gorm:"column:expires_at;not null;index"`
	RevokedAt        *time.Time   `gorm:"column:revoked_at"`
	CreatedAt        time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	LastSeenAt       time.Time    `gorm:"column:last_seen_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

// UserView is returned to clients without exposing credential material.
type UserView struct {
	ID          string  `json:"id"`
	Email       *string `json:"email,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
	IsAnonymous bool    `json:"is_anonymous"`
	HasPassword bool    `json:"has_password"`
}

func ViewOf(u *User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IsAnonymous: u.IsAnonymous,
		HasPassword: u.PasswordHash != nil,
	}
}
