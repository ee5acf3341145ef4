package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	companydomain "github.com/hearback/hearback/internal/company/domain"
	"github.com/hearback/hearback/internal/config"
	identitydomain "github.com/hearback/hearback/internal/identity/domain"
	"github.com/hearback/hearback/internal/identity/session"
	invitationdomain "github.com/hearback/hearback/internal/invitation/domain"
	magicdomain "github.com/hearback/hearback/internal/magiclink/domain"
	obsmetrics "github.com/hearback/hearback/internal/observability/metrics"
	reportdomain "github.com/hearback/hearback/internal/report/domain"
	"go.uber.org/zap"
)

type fakeIdentityService struct {
	signUpCalls int
	sessionUser snowflake.ID
}

func (f *fakeIdentityService) Resolve(ctx context.Context, profile identitydomain.Profile, existingUserID, currentUserID *snowflake.ID) (snowflake.ID, error) {
	return f.sessionUser, nil
}

func (f *fakeIdentityService) SignUp(ctx context.Context, req identitydomain.SignUpRequest) (*identitydomain.LoginResult, error) {
	f.signUpCalls++
	return &identitydomain.LoginResult{
		User:      &identitydomain.UserView{ID: f.sessionUser.String(), HasPassword: true},
		RawToken:  "session-token",
		ExpiresAt: time.Now().Add(time.Hour),
		SessionID: snowflake.ID(300),
	}, nil
}

func (f *fakeIdentityService) SignInAnonymous(ctx context.Context, req identitydomain.AnonymousRequest) (*identitydomain.LoginResult, error) {
	return &identitydomain.LoginResult{
		User:      &identitydomain.UserView{ID: f.sessionUser.String(), IsAnonymous: true},
		RawToken:  "session-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeIdentityService) Login(ctx context.Context, req identitydomain.LoginRequest) (*identitydomain.LoginResult, error) {
	return nil, identitydomain.ErrInvalidCredentials
}

func (f *fakeIdentityService) Logout(ctx context.Context, rawToken string) error {
	return nil
}

func (f *fakeIdentityService) Authenticate(ctx context.Context, rawToken string) (*identitydomain.Session, error) {
	if rawToken != "session-token" {
		return nil, identitydomain.ErrInvalidSession
	}
	return &identitydomain.Session{UserID: f.sessionUser}, nil
}

func (f *fakeIdentityService) SetPassword(ctx context.Context, userID snowflake.ID, password string) error {
	return nil
}

func (f *fakeIdentityService) GetUser(ctx context.Context, id snowflake.ID) (*identitydomain.User, error) {
	return &identitydomain.User{ID: id}, nil
}

type fakeCompanyService struct {
	created *companydomain.Company
}

func (f *fakeCompanyService) Create(ctx context.Context, req companydomain.CreateRequest) (*companydomain.Company, error) {
	f.created = &companydomain.Company{ID: snowflake.ID(500), Name: req.Name, CreatedBy: req.CreatedBy}
	return f.created, nil
}

func (f *fakeCompanyService) ManagerOf(ctx context.Context, userID, companyID snowflake.ID) (*companydomain.Manager, error) {
	return nil, companydomain.ErrNotManager
}

func (f *fakeCompanyService) GetCompany(ctx context.Context, id snowflake.ID) (*companydomain.Company, error) {
	return nil, companydomain.ErrCompanyNotFound
}

func (f *fakeCompanyService) GetUserCompany(ctx context.Context, userID snowflake.ID) (*companydomain.UserCompany, error) {
	return nil, companydomain.ErrCompanyNotFound
}

func (f *fakeCompanyService) ListManagers(ctx context.Context, userID, companyID snowflake.ID) ([]companydomain.ManagerView, error) {
	return nil, companydomain.ErrNotManager
}

type fakeInvitationService struct{}

func (f *fakeInvitationService) Issue(ctx context.Context, req invitationdomain.IssueRequest) (*invitationdomain.Invitation, error) {
	return nil, companydomain.ErrNotManager
}

func (f *fakeInvitationService) ListPending(ctx context.Context, userID, companyID snowflake.ID) ([]invitationdomain.Invitation, error) {
	return nil, companydomain.ErrNotManager
}

func (f *fakeInvitationService) Lookup(ctx context.Context, token string) (*invitationdomain.LookupView, error) {
	return nil, invitationdomain.ErrInvitationNotFound
}

func (f *fakeInvitationService) Accept(ctx context.Context, userID snowflake.ID, token string) (*invitationdomain.AcceptResult, error) {
	return nil, invitationdomain.ErrInvitationAccepted
}

func (f *fakeInvitationService) AcceptWithoutAuth(ctx context.Context, userID snowflake.ID, token string) (*invitationdomain.AnonymousAcceptResult, error) {
	return nil, invitationdomain.ErrInvitationExpired
}

type fakeMagicLinkService struct {
	public *magicdomain.PublicLink
}

func (f *fakeMagicLinkService) Create(ctx context.Context, req magicdomain.CreateRequest) (*magicdomain.MagicLink, error) {
	return nil, companydomain.ErrNotManager
}

func (f *fakeMagicLinkService) Provision(ctx context.Context, userID, companyID snowflake.ID) (*magicdomain.MagicLink, error) {
	return nil, companydomain.ErrNotManager
}

func (f *fakeMagicLinkService) ListByCompany(ctx context.Context, userID, companyID snowflake.ID) ([]magicdomain.MagicLink, error) {
	return nil, companydomain.ErrNotManager
}

func (f *fakeMagicLinkService) Toggle(ctx context.Context, userID, linkID snowflake.ID) (*magicdomain.MagicLink, error) {
	return nil, magicdomain.ErrLinkNotFound
}

func (f *fakeMagicLinkService) ResolvePublic(ctx context.Context, linkID string) (*magicdomain.PublicLink, error) {
	if f.public != nil && f.public.LinkID == linkID {
		return f.public, nil
	}
	return nil, magicdomain.ErrLinkNotFound
}

func (f *fakeMagicLinkService) ResolveActive(ctx context.Context, linkID string) (*magicdomain.MagicLink, error) {
	return nil, magicdomain.ErrLinkNotFound
}

type fakeReportService struct{}

func (f *fakeReportService) Submit(ctx context.Context, req reportdomain.SubmitRequest) (*reportdomain.Report, error) {
	return nil, reportdomain.ErrInvalidLink
}

func (f *fakeReportService) ListByCompany(ctx context.Context, userID, companyID snowflake.ID, filter reportdomain.ListFilter) ([]reportdomain.View, error) {
	return nil, companydomain.ErrNotManager
}

func (f *fakeReportService) Get(ctx context.Context, userID, reportID snowflake.ID) (*reportdomain.Report, error) {
	return nil, reportdomain.ErrReportNotFound
}

func (f *fakeReportService) UpdateStatus(ctx context.Context, userID, reportID snowflake.ID, req reportdomain.UpdateRequest) (*reportdomain.Report, error) {
	return nil, reportdomain.ErrReportNotFound
}

func newTestServer(t *testing.T) (*Server, *fakeIdentityService, *fakeMagicLinkService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{AppName: "hearback-test"}
	metrics, err := obsmetrics.New()
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	engine := NewEngine(zap.NewNop(), metrics)

	identitySvc := &fakeIdentityService{sessionUser: snowflake.ID(200)}
	linkSvc := &fakeMagicLinkService{
		public: &magicdomain.PublicLink{LinkID: "abc123", CompanyName: "Acme"},
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	srv := NewServer(ServerParams{
		Gin:           engine,
		Cfg:           cfg,
		Sessions:      session.NewManager(cfg),
		GenID:         node,
		IdentitySvc:   identitySvc,
		CompanySvc:    &fakeCompanyService{},
		InvitationSvc: &fakeInvitationService{},
		MagicLinkSvc:  linkSvc,
		ReportSvc:     &fakeReportService{},
	})
	return srv, identitySvc, linkSvc
}

func TestSignUpSetsSessionCookie(t *testing.T) {
	srv, identitySvc, _ := newTestServer(t)

	body := bytes.NewBufferString(`{"email":"ada@acme.com","password":"strong-password"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if identitySvc.signUpCalls != 1 {
		t.Fatalf("expected one sign up call, got %d", identitySvc.signUpCalls)
	}

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.DefaultCookieName && c.Value == "session-token" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected session cookie")
	}
}

func TestProtectedRouteRequiresSession(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/companies/mine", nil)
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var resp struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if resp.Error.Type != "unauthorized" {
		t.Fatalf("expected unauthorized, got %q", resp.Error.Type)
	}
}

func TestResolveMagicLinkIsPublic(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/l/abc123", nil)
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var link magicdomain.PublicLink
	if err := json.Unmarshal(rec.Body.Bytes(), &link); err != nil {
		t.Fatalf("decode link: %v", err)
	}
	if link.CompanyName != "Acme" {
		t.Fatalf("expected company name, got %+v", link)
	}
}

func TestAcceptMapsConflicts(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/invitations/some-token/accept", nil)
	req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: "session-token"})
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitReportInvalidLinkIs422(t *testing.T) {
	srv, _, _ := newTestServer(t)

	body := bytes.NewBufferString(`{"title":"x","category":"issue"}`)
	req := httptest.NewRequest(http.MethodPost, "/l/gone/reports", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}
