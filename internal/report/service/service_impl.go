package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/hearback/hearback/internal/clock"
	companydomain "github.com/hearback/hearback/internal/company/domain"
	magicdomain "github.com/hearback/hearback/internal/magiclink/domain"
	"github.com/hearback/hearback/internal/notification"
	"github.com/hearback/hearback/internal/report/domain"
	"go.uber.org/zap"
)

type Service struct {
	log       *zap.Logger
	repo      domain.Repository
	links     magicdomain.Service
	companies companydomain.Service
	enqueuer  notification.Enqueuer
	genID     *snowflake.Node
	clock     clock.Clock
}

func New(
	log *zap.Logger,
	repo domain.Repository,
	links magicdomain.Service,
	companies companydomain.Service,
	enqueuer notification.Enqueuer,
	genID *snowflake.Node,
	clk clock.Clock,
) domain.Service {
	return &Service{
		log:       log.Named("report.service"),
		repo:      repo,
		links:     links,
		companies: companies,
		enqueuer:  enqueuer,
		genID:     genID,
		clock:     clk,
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.Report, error) {
	link, err := s.links.ResolveActive(ctx, req.LinkID)
	if err != nil {
		if errors.Is(err, magicdomain.ErrLinkNotFound) {
			return nil, domain.ErrInvalidLink
		}
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	category := domain.ParseCategory(strings.TrimSpace(req.Category))
	if !category.Valid() {
		return nil, domain.ErrInvalidCategory
	}

	now := s.clock.Now()
	report := &domain.Report{
		ID:          s.genID.Generate(),
		CompanyID:   link.CompanyID,
		MagicLinkID: link.ID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Category:    category,
		IsAnonymous: req.IsAnonymous,
		Status:      domain.StatusNew,
		Priority:    domain.PriorityMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// Reporter identity is dropped at the door for anonymous submissions,
	// whatever the client put on the wire.
	if !req.IsAnonymous {
		if name := strings.TrimSpace(req.ReporterName); name != "" {
			report.ReporterName = &name
		}
		if email := strings.TrimSpace(req.ReporterEmail); email != "" {
			report.ReporterEmail = &email
		}
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	s.enqueuer.EnqueueReportSubmitted(ctx, report.ID)

	s.log.Info("report submitted",
		zap.String("company_id", report.CompanyID.String()),
		zap.String("report_id", report.ID.String()),
		zap.Bool("anonymous", report.IsAnonymous),
	)
	return report, nil
}

func (s *Service) ListByCompany(ctx context.Context, userID, companyID snowflake.ID, filter domain.ListFilter) ([]domain.View, error) {
	if _, err := s.companies.ManagerOf(ctx, userID, companyID); err != nil {
		return nil, err
	}
	if filter.Status != "" && !domain.ParseStatus(filter.Status).Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if filter.Priority != "" && !domain.ParsePriority(filter.Priority).Valid() {
		return nil, domain.ErrInvalidPriority
	}
	return s.repo.ListViews(ctx, companyID, filter)
}

func (s *Service) Get(ctx context.Context, userID, reportID snowflake.ID) (*domain.Report, error) {
	report, err := s.repo.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if _, err := s.companies.ManagerOf(ctx, userID, report.CompanyID); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Service) UpdateStatus(ctx context.Context, userID, reportID snowflake.ID, req domain.UpdateRequest) (*domain.Report, error) {
	report, err := s.repo.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if _, err := s.companies.ManagerOf(ctx, userID, report.CompanyID); err != nil {
		return nil, err
	}

	fields := map[string]any{"updated_at": s.clock.Now()}
	if req.Status != nil {
		status := domain.ParseStatus(strings.TrimSpace(*req.Status))
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		fields["status"] = status
	}
	if req.Priority != nil {
		priority := domain.ParsePriority(strings.TrimSpace(*req.Priority))
		if !priority.Valid() {
			return nil, domain.ErrInvalidPriority
		}
		fields["priority"] = priority
	}
	if req.AssignedTo != nil {
		fields["assigned_to"] = *req.AssignedTo
	}
	if req.Notes != nil {
		fields["notes"] = strings.TrimSpace(*req.Notes)
	}

	if err := s.repo.UpdateFields(ctx, report.ID, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, report.ID)
}
