package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/hearback/hearback/internal/company/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repo) CreateCompany(ctx context.Context, tx *gorm.DB, company *domain.Company) error {
	return r.conn(tx).WithContext(ctx).Create(company).Error
}

func (r *repo) FindCompanyByID(ctx context.Context, id snowflake.ID) (*domain.Company, error) {
	var company domain.Company
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *repo) CreateManager(ctx context.Context, tx *gorm.DB, manager *domain.Manager) error {
	return r.conn(tx).WithContext(ctx).Create(manager).Error
}

func (r *repo) FindManager(ctx context.Context, userID, companyID snowflake.ID) (*domain.Manager, error) {
	var manager domain.Manager
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND company_id = ?", userID, companyID).
		First(&manager).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotManager
	}
	if err != nil {
		return nil, err
	}
	return &manager, nil
}

func (r *repo) FindFirstManagerForUser(ctx context.Context, userID snowflake.ID) (*domain.Manager, error) {
	var manager domain.Manager
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		First(&manager).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &manager, nil
}

func (r *repo) ListManagerViews(ctx context.Context, companyID snowflake.ID) ([]domain.ManagerView, error) {
	var views []domain.ManagerView
	err := r.db.WithContext(ctx).
		Table("managers").
		Select("managers.id, managers.user_id, managers.company_id, managers.role, managers.created_at, users.display_name, users.email").
		Joins("JOIN users ON users.id = managers.user_id").
		Where("managers.company_id = ?", companyID).
		Order("managers.created_at ASC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}
