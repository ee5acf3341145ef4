package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/hearback/hearback/internal/clock"
	companydomain "github.com/hearback/hearback/internal/company/domain"
	"github.com/hearback/hearback/internal/magiclink/domain"
	"github.com/hearback/hearback/pkg/db"
	"go.uber.org/zap"
)

const linkIDBytes = 16

type Service struct {
	log       *zap.Logger
	repo      domain.Repository
	companies companydomain.Service
	genID     *snowflake.Node
	clock     clock.Clock
}

func New(log *zap.Logger, repo domain.Repository, companies companydomain.Service, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &Service{
		log:       log.Named("magiclink.service"),
		repo:      repo,
		companies: companies,
		genID:     genID,
		clock:     clk,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.MagicLink, error) {
	if _, err := s.companies.ManagerOf(ctx, req.UserID, req.CompanyID); err != nil {
		return nil, err
	}
	return s.provision(ctx, req.UserID, req.CompanyID, strings.TrimSpace(req.Name))
}

func (s *Service) Provision(ctx context.Context, userID, companyID snowflake.ID) (*domain.MagicLink, error) {
	return s.provision(ctx, userID, companyID, "")
}

func (s *Service) provision(ctx context.Context, userID, companyID snowflake.ID, name string) (*domain.MagicLink, error) {
	existing, err := s.repo.FindByCreator(ctx, companyID, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrLinkNotFound) {
		return nil, err
	}

	linkID, err := newLinkID()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	link := &domain.MagicLink{
		ID:        s.genID.Generate(),
		CompanyID: companyID,
		LinkID:    linkID,
		IsActive:  true,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if name != "" {
		link.Name = &name
	}

	if err := s.repo.Create(ctx, link); err != nil {
		// Lost a race with a concurrent provision for the same manager.
		if db.IsDuplicateKeyErr(err) {
			return s.repo.FindByCreator(ctx, companyID, userID)
		}
		return nil, err
	}

	s.log.Info("magic link provisioned",
		zap.String("company_id", companyID.String()),
		zap.String("link_id", link.LinkID),
	)
	return link, nil
}

func (s *Service) ListByCompany(ctx context.Context, userID, companyID snowflake.ID) ([]domain.MagicLink, error) {
	if _, err := s.companies.ManagerOf(ctx, userID, companyID); err != nil {
		return nil, err
	}
	return s.repo.ListByCompany(ctx, companyID)
}

func (s *Service) Toggle(ctx context.Context, userID, linkID snowflake.ID) (*domain.MagicLink, error) {
	link, err := s.repo.FindByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if _, err := s.companies.ManagerOf(ctx, userID, link.CompanyID); err != nil {
		return nil, err
	}

	if err := s.repo.SetActive(ctx, link.ID, !link.IsActive); err != nil {
		return nil, err
	}
	link.IsActive = !link.IsActive
	return link, nil
}

func (s *Service) ResolvePublic(ctx context.Context, linkID string) (*domain.PublicLink, error) {
	link, err := s.ResolveActive(ctx, linkID)
	if err != nil {
		return nil, err
	}

	company, err := s.companies.GetCompany(ctx, link.CompanyID)
	if err != nil {
		return nil, err
	}
	return &domain.PublicLink{
		LinkID:      link.LinkID,
		CompanyName: company.Name,
	}, nil
}

func (s *Service) ResolveActive(ctx context.Context, linkID string) (*domain.MagicLink, error) {
	link, err := s.repo.FindByLinkID(ctx, strings.TrimSpace(linkID))
	if err != nil {
		return nil, err
	}
	// An inactive link reads the same as a missing one from outside.
	if !link.IsActive {
		return nil, domain.ErrLinkNotFound
	}
	return link, nil
}

func newLinkID() (string, error) {
	buf := make([]byte, linkIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
