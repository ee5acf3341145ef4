package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateRequest struct {
	Name      string
	CreatedBy snowflake.ID
}

type Service interface {
	// Create opens a company and installs the creator as its owner in a
	// single transaction.
	Create(ctx context.Context, req CreateRequest) (*Company, error)

	// ManagerOf is the authorization guard: it returns the caller's
	// membership row, or ErrNotManager when the user holds no position
	// in the company.
	ManagerOf(ctx context.Context, userID, companyID snowflake.ID) (*Manager, error)

	GetCompany(ctx context.Context, id snowflake.ID) (*Company, error)

	// GetUserCompany returns the first company the user manages together
	// with their role in it, or ErrCompanyNotFound when they manage none.
	GetUserCompany(ctx context.Context, userID snowflake.ID) (*UserCompany, error)

	ListManagers(ctx context.Context, userID, companyID snowflake.ID) ([]ManagerView, error)
}
