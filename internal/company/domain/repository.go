package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	CreateCompany(ctx context.Context, tx *gorm.DB, company *Company) error
	FindCompanyByID(ctx context.Context, id snowflake.ID) (*Company, error)

	CreateManager(ctx context.Context, tx *gorm.DB, manager *Manager) error
	FindManager(ctx context.Context, userID, companyID snowflake.ID) (*Manager, error)
	FindFirstManagerForUser(ctx context.Context, userID snowflake.ID) (*Manager, error)
	ListManagerViews(ctx context.Context, companyID snowflake.ID) ([]ManagerView, error)
}
