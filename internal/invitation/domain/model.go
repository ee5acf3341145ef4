package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the invitation lifecycle state. Values coming from storage
// that fall outside the closed set decode as StatusUnknown.
type Status string

const (
	StatusUnknown  Status = "unknown"
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusExpired  Status = "expired"
)

func ParseStatus(raw string) Status {
	switch Status(raw) {
	case StatusPending, StatusAccepted, StatusExpired:
		return Status(raw)
	default:
		return StatusUnknown
	}
}

type Invitation struct {
	ID        snowflake.ID `json:"id,string" gorm:"primaryKey"`
	CompanyID snowflake.ID `json:"company_id,string" gorm:"index"`
	Email     string       `json:"email"`
	InvitedBy snowflake.ID `json:"invited_by,string"`
	Token     string       `json:"-" gorm:"uniqueIndex"`
	Status    Status       `json:"status"`
	ExpiresAt time.Time    `json:"expires_at"`
	CreatedAt time.Time    `json:"created_at"`
}

func (Invitation) TableName() string {
	return "invitations"
}

// LookupView is what the public token lookup page renders: enough to tell
// the invitee who is asking, nothing more.
type LookupView struct {
	CompanyID   snowflake.ID `json:"company_id,string"`
	CompanyName string       `json:"company_name"`
	InviterName string       `json:"inviter_name"`
	Email       string       `json:"email"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

type AcceptResult struct {
	CompanyID snowflake.ID `json:"company_id,string"`
	UserID    snowflake.ID `json:"user_id,string"`
}

// AnonymousAcceptResult additionally tells the client whether the grant
// landed on an account that still has no password credential.
type AnonymousAcceptResult struct {
	CompanyID     snowflake.ID `json:"company_id,string"`
	UserID        snowflake.ID `json:"user_id,string"`
	NeedsPassword bool         `json:"needs_password"`
}
