package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Category classifies what kind of feedback a report carries.
type Category string

const (
	CategoryUnknown  Category = "unknown"
	CategoryIssue    Category = "issue"
	CategoryConcern  Category = "concern"
	CategoryFeedback Category = "feedback"
	CategoryOther    Category = "other"
)

func ParseCategory(raw string) Category {
	switch Category(raw) {
	case CategoryIssue, CategoryConcern, CategoryFeedback, CategoryOther:
		return Category(raw)
	default:
		return CategoryUnknown
	}
}

func (c Category) Valid() bool {
	return c == CategoryIssue || c == CategoryConcern || c == CategoryFeedback || c == CategoryOther
}

// Status is the triage state. Transitions are advisory: any valid value
// may replace any other, the enum only gates what counts as valid.
type Status string

const (
	StatusUnknown    Status = "unknown"
	StatusNew        Status = "new"
	StatusReviewing  Status = "reviewing"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

func ParseStatus(raw string) Status {
	switch Status(raw) {
	case StatusNew, StatusReviewing, StatusInProgress, StatusResolved, StatusClosed:
		return Status(raw)
	default:
		return StatusUnknown
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusReviewing, StatusInProgress, StatusResolved, StatusClosed:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityUnknown Priority = "unknown"
	PriorityLow     Priority = "low"
	PriorityMedium  Priority = "medium"
	PriorityHigh    Priority = "high"
	PriorityUrgent  Priority = "urgent"
)

func ParsePriority(raw string) Priority {
	switch Priority(raw) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(raw)
	default:
		return PriorityUnknown
	}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

type Report struct {
	ID            snowflake.ID  `json:"id,string" gorm:"primaryKey"`
	CompanyID     snowflake.ID  `json:"company_id,string" gorm:"index"`
	MagicLinkID   snowflake.ID  `json:"magic_link_id,string"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Category      Category      `json:"category"`
	IsAnonymous   bool          `json:"is_anonymous"`
	ReporterName  *string       `json:"reporter_name,omitempty"`
	ReporterEmail *string       `json:"reporter_email,omitempty"`
	Status        Status        `json:"status"`
	Priority      Priority      `json:"priority"`
	AssignedTo    *snowflake.ID `json:"assigned_to,string,omitempty"`
	Notes         *string       `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (Report) TableName() string {
	return "reports"
}

// View is a report joined with the assignee's display name for listings.
type View struct {
	Report
	AssignedToName *string `json:"assigned_to_name,omitempty" gorm:"->"`
}
