package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type SubmitRequest struct {
	LinkID        string
	Title         string
	Description   string
	Category      string
	IsAnonymous   bool
	ReporterName  string
	ReporterEmail string
}

type ListFilter struct {
	Status   string
	Priority string
}

// UpdateRequest is a partial patch: nil fields are left untouched.
type UpdateRequest struct {
	Status     *string
	Priority   *string
	AssignedTo *snowflake.ID
	Notes      *string
}

type Service interface {
	// Submit files a report through a share link. Anonymous submissions
	// shed their reporter fields no matter what the client sent.
	Submit(ctx context.Context, req SubmitRequest) (*Report, error)

	ListByCompany(ctx context.Context, userID, companyID snowflake.ID, filter ListFilter) ([]View, error)

	// Get is guarded through the report's own company.
	Get(ctx context.Context, userID, reportID snowflake.ID) (*Report, error)

	UpdateStatus(ctx context.Context, userID, reportID snowflake.ID, req UpdateRequest) (*Report, error)
}

type Repository interface {
	Create(ctx context.Context, report *Report) error
	FindByID(ctx context.Context, id snowflake.ID) (*Report, error)
	ListViews(ctx context.Context, companyID snowflake.ID, filter ListFilter) ([]View, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
}
