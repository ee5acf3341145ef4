package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/hearback/hearback/internal/magiclink/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, link *domain.MagicLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.MagicLink, error) {
	var link domain.MagicLink
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repo) FindByLinkID(ctx context.Context, linkID string) (*domain.MagicLink, error) {
	var link domain.MagicLink
	err := r.db.WithContext(ctx).Where("link_id = ?", linkID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repo) FindByCreator(ctx context.Context, companyID, createdBy snowflake.ID) (*domain.MagicLink, error) {
	var link domain.MagicLink
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND created_by = ?", companyID, createdBy).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repo) ListByCompany(ctx context.Context, companyID snowflake.ID) ([]domain.MagicLink, error) {
	var links []domain.MagicLink
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *repo) SetActive(ctx context.Context, id snowflake.ID, active bool) error {
	tx := r.db.WithContext(ctx).Model(&domain.MagicLink{}).
		Where("id = ?", id).
		Update("is_active", active)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrLinkNotFound
	}
	return nil
}
