package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/hearback/hearback/internal/invitation/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, inv *domain.Invitation) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvitationNotFound
	}
	if err != nil {
		return nil, err
	}
	inv.Status = domain.ParseStatus(string(inv.Status))
	return &inv, nil
}

func (r *repo) FindByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvitationNotFound
	}
	if err != nil {
		return nil, err
	}
	inv.Status = domain.ParseStatus(string(inv.Status))
	return &inv, nil
}

func (r *repo) FindPending(ctx context.Context, companyID snowflake.ID, email string) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND email = ? AND status = ?", companyID, email, domain.StatusPending).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvitationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repo) ListPending(ctx context.Context, companyID snowflake.ID) ([]domain.Invitation, error) {
	var invs []domain.Invitation
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, domain.StatusPending).
		Order("created_at DESC").
		Find(&invs).Error
	if err != nil {
		return nil, err
	}
	return invs, nil
}

func (r *repo) UpdateStatus(ctx context.Context, id snowflake.ID, status domain.Status) error {
	tx := r.db.WithContext(ctx).Model(&domain.Invitation{}).
		Where("id = ?", id).
		Update("status", status)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrInvitationNotFound
	}
	return nil
}
