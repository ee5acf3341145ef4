package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/hearback/hearback/internal/clock"
	"github.com/hearback/hearback/internal/company/domain"
	"github.com/hearback/hearback/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	log   *zap.Logger
	db    *gorm.DB
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func New(log *zap.Logger, gdb *gorm.DB, repo domain.Repository, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &Service{
		log:   log.Named("company.service"),
		db:    gdb,
		repo:  repo,
		genID: genID,
		clock: clk,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	company := &domain.Company{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      s.uniqueSlug(name),
		CreatedBy: req.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	owner := &domain.Manager{
		ID:        s.genID.Generate(),
		UserID:    req.CreatedBy,
		CompanyID: company.ID,
		Role:      domain.RoleOwner,
		CreatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.CreateCompany(ctx, tx, company); err != nil {
			return err
		}
		return s.repo.CreateManager(ctx, tx, owner)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrManagerExists
		}
		return nil, err
	}

	s.log.Info("company created",
		zap.String("company_id", company.ID.String()),
		zap.String("slug", company.Slug),
	)
	return company, nil
}

func (s *Service) ManagerOf(ctx context.Context, userID, companyID snowflake.ID) (*domain.Manager, error) {
	return s.repo.FindManager(ctx, userID, companyID)
}

func (s *Service) GetCompany(ctx context.Context, id snowflake.ID) (*domain.Company, error) {
	return s.repo.FindCompanyByID(ctx, id)
}

func (s *Service) GetUserCompany(ctx context.Context, userID snowflake.ID) (*domain.UserCompany, error) {
	manager, err := s.repo.FindFirstManagerForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	company, err := s.repo.FindCompanyByID(ctx, manager.CompanyID)
	if err != nil {
		return nil, err
	}
	return &domain.UserCompany{Company: *company, Role: manager.Role}, nil
}

func (s *Service) ListManagers(ctx context.Context, userID, companyID snowflake.ID) ([]domain.ManagerView, error) {
	if _, err := s.repo.FindManager(ctx, userID, companyID); err != nil {
		return nil, err
	}
	return s.repo.ListManagerViews(ctx, companyID)
}

// uniqueSlug derives a URL-safe slug from the name. The company id tail
// keeps two same-named companies from colliding on the unique index.
func (s *Service) uniqueSlug(name string) string {
	base := slug.Make(name)
	if base == "" {
		base = "company"
	}
	suffix := s.genID.Generate().String()
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return base + "-" + suffix
}
