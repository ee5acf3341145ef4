package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hearback/hearback/internal/clock"
	companydomain "github.com/hearback/hearback/internal/company/domain"
	identitydomain "github.com/hearback/hearback/internal/identity/domain"
	"github.com/hearback/hearback/internal/invitation/domain"
	magicdomain "github.com/hearback/hearback/internal/magiclink/domain"
	"github.com/hearback/hearback/internal/notification"
	"github.com/hearback/hearback/pkg/db"
	"go.uber.org/zap"
)

const (
	tokenBytes    = 32
	invitationTTL = 7 * 24 * time.Hour
)

type Service struct {
	log       *zap.Logger
	repo      domain.Repository
	users     identitydomain.Repository
	companies companydomain.Repository
	links     magicdomain.Service
	enqueuer  notification.Enqueuer
	genID     *snowflake.Node
	clock     clock.Clock
}

func New(
	log *zap.Logger,
	repo domain.Repository,
	users identitydomain.Repository,
	companies companydomain.Repository,
	links magicdomain.Service,
	enqueuer notification.Enqueuer,
	genID *snowflake.Node,
	clk clock.Clock,
) domain.Service {
	return &Service{
		log:       log.Named("invitation.service"),
		repo:      repo,
		users:     users,
		companies: companies,
		links:     links,
		enqueuer:  enqueuer,
		genID:     genID,
		clock:     clk,
	}
}

func (s *Service) Issue(ctx context.Context, req domain.IssueRequest) (*domain.Invitation, error) {
	if _, err := s.companies.FindManager(ctx, req.UserID, req.CompanyID); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidEmail
	}

	// The duplicate-manager check matches the candidate email exactly as
	// written. "Ada@acme.com" and "ada@acme.com" are different here even
	// though the resolver would fold them together.
	existing, err := s.users.FindByExactEmail(ctx, email)
	if err != nil && !errors.Is(err, identitydomain.ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		if _, err := s.companies.FindManager(ctx, existing.ID, req.CompanyID); err == nil {
			return nil, companydomain.ErrManagerExists
		} else if !errors.Is(err, companydomain.ErrNotManager) {
			return nil, err
		}
	}

	now := s.clock.Now()
	if pending, err := s.repo.FindPending(ctx, req.CompanyID, email); err == nil {
		if pending.ExpiresAt.After(now) {
			return nil, domain.ErrInvitationExists
		}
		// Stale pending row: flip it so the partial unique index frees up.
		if err := s.repo.UpdateStatus(ctx, pending.ID, domain.StatusExpired); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, domain.ErrInvitationNotFound) {
		return nil, err
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	inv := &domain.Invitation{
		ID:        s.genID.Generate(),
		CompanyID: req.CompanyID,
		Email:     email,
		InvitedBy: req.UserID,
		Token:     token,
		Status:    domain.StatusPending,
		ExpiresAt: now.Add(invitationTTL),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		// The partial unique index on pending (company_id, email) closes
		// the race two concurrent issues would otherwise slip through.
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrInvitationExists
		}
		return nil, err
	}

	s.enqueuer.EnqueueInvitationEmail(ctx, inv.ID)

	s.log.Info("invitation issued",
		zap.String("company_id", req.CompanyID.String()),
		zap.String("invitation_id", inv.ID.String()),
	)
	return inv, nil
}

func (s *Service) ListPending(ctx context.Context, userID, companyID snowflake.ID) ([]domain.Invitation, error) {
	if _, err := s.companies.FindManager(ctx, userID, companyID); err != nil {
		return nil, err
	}
	return s.repo.ListPending(ctx, companyID)
}

func (s *Service) Lookup(ctx context.Context, token string) (*domain.LookupView, error) {
	inv, err := s.repo.FindByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	// The landing page cannot tell expired from unknown. Any other
	// status still resolves: an accepted token keeps rendering after
	// the accept flow reloads the page. Lookup is a read, the lapsed
	// row keeps its stored status until a mutating path touches it.
	if inv.Status == domain.StatusExpired || s.clock.Now().After(inv.ExpiresAt) {
		return nil, domain.ErrInvitationNotFound
	}

	company, err := s.companies.FindCompanyByID(ctx, inv.CompanyID)
	if err != nil {
		return nil, err
	}

	inviterName := ""
	if inviter, err := s.users.FindByID(ctx, inv.InvitedBy); err == nil {
		inviterName = inviter.DisplayName
	}

	return &domain.LookupView{
		CompanyID:   inv.CompanyID,
		CompanyName: company.Name,
		InviterName: inviterName,
		Email:       inv.Email,
		ExpiresAt:   inv.ExpiresAt,
	}, nil
}

func (s *Service) Accept(ctx context.Context, userID snowflake.ID, token string) (*domain.AcceptResult, error) {
	inv, err := s.pendingByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Exact comparison, same as the issue-side duplicate check.
	if user.Email == nil || *user.Email != inv.Email {
		return nil, domain.ErrEmailMismatch
	}

	if err := s.grant(ctx, inv, user.ID); err != nil {
		return nil, err
	}

	return &domain.AcceptResult{
		CompanyID: inv.CompanyID,
		UserID:    user.ID,
	}, nil
}

func (s *Service) AcceptWithoutAuth(ctx context.Context, userID snowflake.ID, token string) (*domain.AnonymousAcceptResult, error) {
	inv, err := s.pendingByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	normalized := strings.ToLower(strings.TrimSpace(inv.Email))

	target, err := s.users.FindByNormalizedEmail(ctx, normalized)
	if err != nil && !errors.Is(err, identitydomain.ErrUserNotFound) {
		return nil, err
	}
	if target == nil {
		// Nobody owns the email yet: the anonymous identity claims it.
		if err := s.users.UpdateFields(ctx, userID, map[string]any{
			"email":        normalized,
			"is_anonymous": false,
			"updated_at":   s.clock.Now(),
		}); err != nil {
			return nil, err
		}
		target, err = s.users.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.grant(ctx, inv, target.ID); err != nil {
		return nil, err
	}

	return &domain.AnonymousAcceptResult{
		CompanyID:     inv.CompanyID,
		UserID:        target.ID,
		NeedsPassword: target.PasswordHash == nil,
	}, nil
}

// pendingByToken loads an invitation and enforces the pending state,
// flipping a lapsed pending row to expired on the way through.
func (s *Service) pendingByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	inv, err := s.repo.FindByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}

	switch inv.Status {
	case domain.StatusPending:
	case domain.StatusAccepted:
		return nil, domain.ErrInvitationAccepted
	case domain.StatusExpired:
		return nil, domain.ErrInvitationExpired
	default:
		return nil, domain.ErrInvitationNotFound
	}

	if s.clock.Now().After(inv.ExpiresAt) {
		if err := s.repo.UpdateStatus(ctx, inv.ID, domain.StatusExpired); err != nil {
			return nil, err
		}
		return nil, domain.ErrInvitationExpired
	}
	return inv, nil
}

// grant installs the user as a manager, mints their intake link and marks
// the invitation accepted. Re-granting an existing manager is a no-op on
// the membership row.
func (s *Service) grant(ctx context.Context, inv *domain.Invitation, userID snowflake.ID) error {
	_, err := s.companies.FindManager(ctx, userID, inv.CompanyID)
	switch {
	case err == nil:
		// Already a manager, only the invitation state moves.
	case errors.Is(err, companydomain.ErrNotManager):
		manager := &companydomain.Manager{
			ID:        s.genID.Generate(),
			UserID:    userID,
			CompanyID: inv.CompanyID,
			Role:      companydomain.RoleManager,
			CreatedAt: s.clock.Now(),
		}
		if err := s.companies.CreateManager(ctx, nil, manager); err != nil && !db.IsDuplicateKeyErr(err) {
			return err
		}
	default:
		return err
	}

	if _, err := s.links.Provision(ctx, userID, inv.CompanyID); err != nil {
		return err
	}

	return s.repo.UpdateStatus(ctx, inv.ID, domain.StatusAccepted)
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
