package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/hearback/hearback/internal/report/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, report *domain.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Report, error) {
	var report domain.Report
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	refold(&report)
	return &report, nil
}

func (r *repo) ListViews(ctx context.Context, companyID snowflake.ID, filter domain.ListFilter) ([]domain.View, error) {
	q := r.db.WithContext(ctx).
		Table("reports").
		Select("reports.*, users.display_name AS assigned_to_name").
		Joins("LEFT JOIN users ON users.id = reports.assigned_to").
		Where("reports.company_id = ?", companyID).
		Order("reports.created_at DESC")
	if filter.Status != "" {
		q = q.Where("reports.status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("reports.priority = ?", filter.Priority)
	}

	var views []domain.View
	if err := q.Scan(&views).Error; err != nil {
		return nil, err
	}
	for i := range views {
		refold(&views[i].Report)
	}
	return views, nil
}

func (r *repo) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.Report{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

// refold clamps stored enum values back into the closed sets.
func refold(report *domain.Report) {
	report.Category = domain.ParseCategory(string(report.Category))
	report.Status = domain.ParseStatus(string(report.Status))
	report.Priority = domain.ParsePriority(string(report.Priority))
}
