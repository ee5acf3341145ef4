package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hearback/hearback/internal/clock"
	companydomain "github.com/hearback/hearback/internal/company/domain"
	companyrepo "github.com/hearback/hearback/internal/company/repository"
	companyservice "github.com/hearback/hearback/internal/company/service"
	identitydomain "github.com/hearback/hearback/internal/identity/domain"
	identityrepo "github.com/hearback/hearback/internal/identity/repository"
	identityservice "github.com/hearback/hearback/internal/identity/service"
	"github.com/hearback/hearback/internal/invitation/domain"
	invitationrepo "github.com/hearback/hearback/internal/invitation/repository"
	magicdomain "github.com/hearback/hearback/internal/magiclink/domain"
	magicrepo "github.com/hearback/hearback/internal/magiclink/repository"
	magicservice "github.com/hearback/hearback/internal/magiclink/service"
	"github.com/hearback/hearback/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEnqueuer struct {
	invitationEmails []snowflake.ID
	reportEmails     []snowflake.ID
}

func (f *fakeEnqueuer) EnqueueInvitationEmail(ctx context.Context, invitationID snowflake.ID) {
	f.invitationEmails = append(f.invitationEmails, invitationID)
}

func (f *fakeEnqueuer) EnqueueReportSubmitted(ctx context.Context, reportID snowflake.ID) {
	f.reportEmails = append(f.reportEmails, reportID)
}

type harness struct {
	svc       domain.Service
	identity  identitydomain.Service
	users     identitydomain.Repository
	companies companydomain.Service
	compRepo  companydomain.Repository
	links     magicdomain.Service
	linkRepo  magicdomain.Repository
	invRepo   domain.Repository
	enqueuer  *fakeEnqueuer
	clk       *clock.FakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&identitydomain.User{},
		&identitydomain.Session{},
		&companydomain.Company{},
		&companydomain.Manager{},
		&magicdomain.MagicLink{},
		&domain.Invitation{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	users, sessions := identityrepo.New(dbConn)
	identitySvc := identityservice.New(log, users, sessions, node, clk)

	companies := companyrepo.New(dbConn)
	companySvc := companyservice.New(log, dbConn, companies, node, clk)

	linkRepo := magicrepo.New(dbConn)
	linkSvc := magicservice.New(log, linkRepo, companySvc, node, clk)

	enq := &fakeEnqueuer{}
	invRepo := invitationrepo.New(dbConn)
	svc := New(log, invRepo, users, companies, linkSvc, enq, node, clk)

	return &harness{
		svc:       svc,
		identity:  identitySvc,
		users:     users,
		companies: companySvc,
		compRepo:  companies,
		links:     linkSvc,
		linkRepo:  linkRepo,
		invRepo:   invRepo,
		enqueuer:  enq,
		clk:       clk,
	}
}

func (h *harness) newUser(t *testing.T, email string) snowflake.ID {
	t.Helper()
	id, err := h.identity.Resolve(context.Background(), identitydomain.Profile{Email: email}, nil, nil)
	require.NoError(t, err)
	return id
}

// newUserExact inserts a user whose email keeps its original casing,
// bypassing the resolver's normalization.
func (h *harness) newUserExact(t *testing.T, email string) snowflake.ID {
	t.Helper()
	id := h.newUser(t, email)
	require.NoError(t, h.users.UpdateFields(context.Background(), id, map[string]any{"email": email}))
	return id
}

func (h *harness) newCompany(t *testing.T, owner snowflake.ID, name string) snowflake.ID {
	t.Helper()
	company, err := h.companies.Create(context.Background(), companydomain.CreateRequest{Name: name, CreatedBy: owner})
	require.NoError(t, err)
	return company.ID
}

func TestIssueRequiresManager(t *testing.T) {
	h := newHarness(t)
	owner := h.newUser(t, "owner@acme.com")
	companyID := h.newCompany(t, owner, "Acme")
	outsider := h.newUser(t, "outsider@acme.com")

	_, err := h.svc.Issue(context.Background(), domain.IssueRequest{
		UserID:    outsider,
		CompanyID: companyID,
		Email:     "new@acme.com",
	})
	require.ErrorIs(t, err, companydomain.ErrNotManager)
}

func TestIssueRejectsInvalidEmail(t *testing.T) {
	h := newHarness(t)
	owner := h.newUser(t, "owner@acme.com")
	companyID := h.newCompany(t, owner, "Acme")

	_, err := h.svc.Issue(context.Background(), domain.IssueRequest{
		UserID:    owner,
		CompanyID: companyID,
		Email:     "not-an-email",
	})
	require.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestIssueDuplicateManagerIsCaseSensitive(t *testing.T) {
	h := newHarness(t)
	owner := h.newUser(t, "owner@acme.com")
	companyID := h.newCompany(t, owner, "Acme")

	ada := h.newUserExact(t, "Ada@acme.com")
	inv, err := h.svc.Issue(context.Background(), domain.IssueRequest{UserID: owner, CompanyID: companyID, Email: "Ada@acme.com"})
	require.NoError(t, err)
	_, err = h.svc.Accept(context.Background(), ada, inv.Token)
	require.NoError(t, err)

	// Ada is on the roster under "Ada@acme.com". The exact-match check
	// catches the same casing...
	_, err = h.svc.Issue(context.Background(), domain.IssueRequest{UserID: owner, CompanyID: companyID, Email: "Ada@acme.com"})
	require.ErrorIs(t, err, companydomain.ErrManagerExists)

	// ...while a lowercase variant slips past it and issues a fresh
	// invitation for an address that, normalized, she already owns.
	second, err := h.svc.Issue(context.Background(), domain.IssueRequest{UserID: owner, CompanyID: companyID, Email: "ada@acme.com"})
	require.NoError(t, err)
	require.NotNil(t, second)
}

func TestIssueDuplicatePending(t *testing.T) {
	h := newHarness(t)
	owner := h.newUser(t, "owner@acme.com")
	companyID := h.newCompany(t, owner, "Acme")

	_, err := h.svc.Issue(context.Background(), domain.IssueRequest{UserID: owner, CompanyID: companyID, Email: "new@acme.com"})
	require.NoError(t, err)
	require.Len(t, h.enqueuer.invitationEmails, 1)

	_, err = h.svc.Issue(context.Background(), domain.IssueRequest{UserID: owner, CompanyID: companyID, Email: "new@acme.com"})
	require.ErrorIs(t, err, domain.ErrInvitationExists)
	require.Len(t, h.enqueuer.invitationEmails, 1)
}

func TestIssueReplacesLapsedPending(t *testing.T) {
	h := newHarness(t)
	owner := h.newUser(t, "owner@acme.com")
	companyID := h.newCompany(t, owner, "Acme")

	first, err := h.svc.Issue(context.Background(), domain.IssueRequest{UserID: owner, CompanyID: companyID, Email: "new@acme.com"})
	require.NoError(t, err)

	h.clk.Advance(8 * 24 * time.Hour)

	second, err := h.svc.Issue(context.Background(), domain.IssueRequest{UserID: owner, CompanyID: companyID, Email: "new@acme.com"})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
}

func TestLookupExpiredReadsAsNotFound(t *testing.T) {
	h := newHarness(t)
	owner := h.newUser(t, "owner@acme.com")
	companyID := h.newCompany(t, owner, "Acme")

	inv, err := h.svc.Issue(context.Background(), domain.IssueRequest{UserID: owner, CompanyID: companyID, Email: "new@acme.com"})
	require.NoError(t, err)

	view, err := h.svc.Lookup(context.Background(), inv.Token)
	require.NoError(t, err)
	require.Equal(t, "Acme", view.CompanyName)
	require.Equal(t, "new@acme.com", view.Email)

	h.clk.Advance(8 * 24 * time.Hour)

	_, err = h.svc.Lookup(context.Background(), inv.Token)
	require.ErrorIs(t, err, domain.ErrInvitationNotFound)

	_, err = h.svc.Lookup(context.Background(), "no-such-token")
	require.ErrorIs(t, err, domain.ErrInvitationNotFound)
}

func TestLookupAfterAcceptStillResolves(t *testing.T) {
	h := newHarness(t)
	owner := h.newUser(t, "owner@acme.com")
	companyID := h.newCompany(t, owner, "Acme")

	inv, err := h.svc.Issue(context.Background(), domain.IssueRequest{UserID: owner, CompanyID: companyID, Email: "grete@acme.com"})
	require.NoError(t, err)

	grete := h.newUser(t, "grete@acme.com")
	_, err = h.svc.Accept(context.Background(), grete, inv.Token)
	require.NoError(t, err)

	// The landing page reloads after a successful accept; the token
	// still renders even though the invitation is no longer pending.
	view, err := h.svc.Lookup(context.Background(), inv.Token)
	require.NoError(t, err)
	require.Equal(t, "Acme", view.CompanyName)
	require.Equal(t, "grete@acme.com", view.Email)
}

func TestLookupDoesNotFlipLapsedStatus(t *testing.T) {
	h := newHarness(t)
	owner := h.newUser(t, "owner@acme.com")
	companyID := h.newCompany(t, owner, "Acme")

	inv, err := h.svc.Issue(context.Background(), domain.IssueRequest{UserID: owner, CompanyID: companyID, Email: "new@acme.com"})
	require.NoError(t, err)

	h.clk.Advance(8 * 24 * time.Hour)

	_, err = h.svc.Lookup(context.Background(), inv.Token)
	require.ErrorIs(t, err, domain.ErrInvitationNotFound)

	// Lookup is a pure read: the stored row stays pending until a
	// mutating path (accept, re-issue) flips it.
	stored, err := h.invRepo.FindByToken(context.Background(), inv.Token)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, stored.Status)
}

func TestAcceptRequiresExactEmail(t *testing.T) {
	h := newHarness(t)
	owner := h.newUser(t, "owner@acme.com")
	companyID := h.newCompany(t, owner, "Acme")

	inv, err := h.svc.Issue(context.Background(), domain.IssueRequest{UserID: owner, CompanyID: companyID, Email: "Grete@acme.com"})
	require.NoError(t, err)

	// The resolver stored grete's email lowercased, the invitation says
	// "Grete@acme.com": the authenticated accept refuses the mismatch.
	grete := h.newUser(t, "Grete@acme.com")
	_, err = h.svc.Accept(context.Background(), grete, inv.Token)
	require.ErrorIs(t, err, domain.ErrEmailMismatch)

	exact := h.newUserExact(t, "Grete@acme.com")
	result, err := h.svc.Accept(context.Background(), exact, inv.Token)
	require.NoError(t, err)
	require.Equal(t, companyID, result.CompanyID)
	require.Equal(t, exact, result.UserID)

	manager, err := h.companies.ManagerOf(context.Background(), exact, companyID)
	require.NoError(t, err)
	require.Equal(t, companydomain.RoleManager, manager.Role)

	// Membership came with a personal intake link.
	link, err := h.linkRepo.FindByCreator(context.Background(), companyID, exact)
	require.NoError(t, err)
	require.True(t, link.IsActive)
}

func TestAcceptTwiceConflicts(t *testing.T) {
	h := newHarness(t)
	owner := h.newUser(t, "owner@acme.com")
	companyID := h.newCompany(t, owner, "Acme")

	inv, err := h.svc.Issue(context.Background(), domain.IssueRequest{UserID: owner, CompanyID: companyID, Email: "hans@acme.com"})
	require.NoError(t, err)

	hans := h.newUser(t, "hans@acme.com")
	_, err = h.svc.Accept(context.Background(), hans, inv.Token)
	require.NoError(t, err)

	_, err = h.svc.Accept(context.Background(), hans, inv.Token)
	require.ErrorIs(t, err, domain.ErrInvitationAccepted)
}

func TestAcceptExpiredFlipsStatus(t *testing.T) {
	h := newHarness(t)
	owner := h.newUser(t, "owner@acme.com")
	companyID := h.newCompany(t, owner, "Acme")

	inv, err := h.svc.Issue(context.Background(), domain.IssueRequest{UserID: owner, CompanyID: companyID, Email: "ivan@acme.com"})
	require.NoError(t, err)

	h.clk.Advance(8 * 24 * time.Hour)

	ivan := h.newUser(t, "ivan@acme.com")
	_, err = h.svc.Accept(context.Background(), ivan, inv.Token)
	require.ErrorIs(t, err, domain.ErrInvitationExpired)

	// The row was flipped, not just rejected.
	_, err = h.svc.Accept(context.Background(), ivan, inv.Token)
	require.ErrorIs(t, err, domain.ErrInvitationExpired)
	_, err = h.companies.ManagerOf(context.Background(), ivan, companyID)
	require.ErrorIs(t, err, companydomain.ErrNotManager)
}

func TestAcceptWithoutAuthRetargetsExistingAccount(t *testing.T) {
	h := newHarness(t)
	owner := h.newUser(t, "owner@acme.com")
	companyID := h.newCompany(t, owner, "Acme")

	judy := h.newUser(t, "judy@acme.com")
	require.NoError(t, h.identity.SetPassword(context.Background(), judy, "strong-password"))

	inv, err := h.svc.Issue(context.Background(), domain.IssueRequest{UserID: owner, CompanyID: companyID, Email: "Judy@Acme.com"})
	require.NoError(t, err)

	anon, err := h.identity.Resolve(context.Background(), identitydomain.Profile{}, nil, nil)
	require.NoError(t, err)

	result, err := h.svc.AcceptWithoutAuth(context.Background(), anon, inv.Token)
	require.NoError(t, err)
	// The grant abandoned the anonymous identity for the existing account.
	require.Equal(t, judy, result.UserID)
	require.False(t, result.NeedsPassword)

	_, err = h.companies.ManagerOf(context.Background(), judy, companyID)
	require.NoError(t, err)
	_, err = h.companies.ManagerOf(context.Background(), anon, companyID)
	require.ErrorIs(t, err, companydomain.ErrNotManager)
}

func TestAcceptWithoutAuthClaimsEmailForAnonymous(t *testing.T) {
	h := newHarness(t)
	owner := h.newUser(t, "owner@acme.com")
	companyID := h.newCompany(t, owner, "Acme")

	inv, err := h.svc.Issue(context.Background(), domain.IssueRequest{UserID: owner, CompanyID: companyID, Email: "Kara@Acme.com"})
	require.NoError(t, err)

	anon, err := h.identity.Resolve(context.Background(), identitydomain.Profile{}, nil, nil)
	require.NoError(t, err)

	result, err := h.svc.AcceptWithoutAuth(context.Background(), anon, inv.Token)
	require.NoError(t, err)
	require.Equal(t, anon, result.UserID)
	require.True(t, result.NeedsPassword)

	user, err := h.identity.GetUser(context.Background(), anon)
	require.NoError(t, err)
	require.NotNil(t, user.Email)
	require.Equal(t, "kara@acme.com", *user.Email)
	require.False(t, user.IsAnonymous)
}

func TestAcceptIdempotentForExistingManager(t *testing.T) {
	h := newHarness(t)
	owner := h.newUser(t, "owner@acme.com")
	companyID := h.newCompany(t, owner, "Acme")

	issued, err := h.svc.Issue(context.Background(), domain.IssueRequest{UserID: owner, CompanyID: companyID, Email: "Pat@acme.com"})
	require.NoError(t, err)

	// Pat lands on the roster out of band while the invitation is still
	// pending. Accepting is then a no-op on membership.
	pat := h.newUserExact(t, "Pat@acme.com")
	require.NoError(t, h.compRepo.CreateManager(context.Background(), nil, &companydomain.Manager{
		ID:        snowflake.ID(999),
		UserID:    pat,
		CompanyID: companyID,
		Role:      companydomain.RoleManager,
		CreatedAt: h.clk.Now(),
	}))

	result, err := h.svc.Accept(context.Background(), pat, issued.Token)
	require.NoError(t, err)
	require.Equal(t, pat, result.UserID)

	managers, err := h.companies.ListManagers(context.Background(), owner, companyID)
	require.NoError(t, err)
	require.Len(t, managers, 2)

	pending, err := h.svc.ListPending(context.Background(), owner, companyID)
	require.NoError(t, err)
	require.Empty(t, pending)
}
