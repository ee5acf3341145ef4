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
	"github.com/hearback/hearback/internal/magiclink/domain"
	magicrepo "github.com/hearback/hearback/internal/magiclink/repository"
	"github.com/hearback/hearback/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type harness struct {
	svc       domain.Service
	companies companydomain.Service
	node      *snowflake.Node
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&identitydomain.User{},
		&companydomain.Company{},
		&companydomain.Manager{},
		&domain.MagicLink{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	companySvc := companyservice.New(log, dbConn, companyrepo.New(dbConn), node, clk)
	svc := New(log, magicrepo.New(dbConn), companySvc, node, clk)

	return &harness{svc: svc, companies: companySvc, node: node}
}

func (h *harness) newCompany(t *testing.T, owner snowflake.ID) snowflake.ID {
	t.Helper()
	company, err := h.companies.Create(context.Background(), companydomain.CreateRequest{
		Name:      "Acme",
		CreatedBy: owner,
	})
	require.NoError(t, err)
	return company.ID
}

func TestCreateIsIdempotentPerManager(t *testing.T) {
	h := newHarness(t)
	owner := h.node.Generate()
	companyID := h.newCompany(t, owner)

	first, err := h.svc.Create(context.Background(), domain.CreateRequest{UserID: owner, CompanyID: companyID})
	require.NoError(t, err)

	second, err := h.svc.Create(context.Background(), domain.CreateRequest{UserID: owner, CompanyID: companyID, Name: "ignored"})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.LinkID, second.LinkID)
}

func TestCreateRequiresManager(t *testing.T) {
	h := newHarness(t)
	owner := h.node.Generate()
	companyID := h.newCompany(t, owner)

	_, err := h.svc.Create(context.Background(), domain.CreateRequest{UserID: h.node.Generate(), CompanyID: companyID})
	require.ErrorIs(t, err, companydomain.ErrNotManager)
}

func TestToggleGuardsByLinkCompany(t *testing.T) {
	h := newHarness(t)
	owner := h.node.Generate()
	companyID := h.newCompany(t, owner)

	link, err := h.svc.Create(context.Background(), domain.CreateRequest{UserID: owner, CompanyID: companyID})
	require.NoError(t, err)

	// An owner of a different company cannot flip this link.
	otherOwner := h.node.Generate()
	h.newCompany(t, otherOwner)
	_, err = h.svc.Toggle(context.Background(), otherOwner, link.ID)
	require.ErrorIs(t, err, companydomain.ErrNotManager)

	toggled, err := h.svc.Toggle(context.Background(), owner, link.ID)
	require.NoError(t, err)
	require.False(t, toggled.IsActive)
}

func TestResolvePublicHidesInactiveLinks(t *testing.T) {
	h := newHarness(t)
	owner := h.node.Generate()
	companyID := h.newCompany(t, owner)

	link, err := h.svc.Create(context.Background(), domain.CreateRequest{UserID: owner, CompanyID: companyID})
	require.NoError(t, err)

	public, err := h.svc.ResolvePublic(context.Background(), link.LinkID)
	require.NoError(t, err)
	require.Equal(t, "Acme", public.CompanyName)
	require.Equal(t, link.LinkID, public.LinkID)

	_, err = h.svc.Toggle(context.Background(), owner, link.ID)
	require.NoError(t, err)

	_, err = h.svc.ResolvePublic(context.Background(), link.LinkID)
	require.ErrorIs(t, err, domain.ErrLinkNotFound)

	_, err = h.svc.ResolvePublic(context.Background(), "no-such-link")
	require.ErrorIs(t, err, domain.ErrLinkNotFound)
}
