package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/hearback/hearback/internal/clock"
	"github.com/hearback/hearback/internal/company"
	companydomain "github.com/hearback/hearback/internal/company/domain"
	"github.com/hearback/hearback/internal/config"
	"github.com/hearback/hearback/internal/identity"
	identitydomain "github.com/hearback/hearback/internal/identity/domain"
	"github.com/hearback/hearback/internal/identity/session"
	"github.com/hearback/hearback/internal/invitation"
	invitationdomain "github.com/hearback/hearback/internal/invitation/domain"
	"github.com/hearback/hearback/internal/magiclink"
	magicdomain "github.com/hearback/hearback/internal/magiclink/domain"
	"github.com/hearback/hearback/internal/notification"
	obslogger "github.com/hearback/hearback/internal/observability/logger"
	obsmetrics "github.com/hearback/hearback/internal/observability/metrics"
	"github.com/hearback/hearback/internal/providers/email"
	"github.com/hearback/hearback/internal/report"
	reportdomain "github.com/hearback/hearback/internal/report/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	config.Module,
	clock.Module,
	obsmetrics.Module,
	fx.Provide(registerGin),
	session.Module,
	identity.Module,
	company.Module,
	invitation.Module,
	magiclink.Module,
	report.Module,
	email.Module,
	notification.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	sessions      *session.Manager
	genID         *snowflake.Node
	identitySvc   identitydomain.Service
	companySvc    companydomain.Service
	invitationSvc invitationdomain.Service
	magicLinkSvc  magicdomain.Service
	reportSvc     reportdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Sessions      *session.Manager
	GenID         *snowflake.Node
	IdentitySvc   identitydomain.Service
	CompanySvc    companydomain.Service
	InvitationSvc invitationdomain.Service
	MagicLinkSvc  magicdomain.Service
	ReportSvc     reportdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		sessions:      p.Sessions,
		genID:         p.GenID,
		identitySvc:   p.IdentitySvc,
		companySvc:    p.CompanySvc,
		invitationSvc: p.InvitationSvc,
		magicLinkSvc:  p.MagicLinkSvc,
		reportSvc:     p.ReportSvc,
	}

	svc.registerAuthRoutes()
	svc.registerCompanyRoutes()
	svc.registerInvitationRoutes()
	svc.registerLinkRoutes()
	svc.registerReportRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/signup", s.SignUp)
	auth.POST("/anonymous", s.SignInAnonymous)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.POST("/password", s.AuthRequired(), s.SetPassword)
}

func (s *Server) registerCompanyRoutes() {
	companies := s.engine.Group("/companies", s.AuthRequired())

	companies.POST("", s.CreateCompany)
	companies.GET("/mine", s.GetMyCompany)
	companies.GET("/:id/managers", s.ListManagers)
}

func (s *Server) registerInvitationRoutes() {
	companies := s.engine.Group("/companies", s.AuthRequired())
	companies.POST("/:id/invitations", s.IssueInvitation)
	companies.GET("/:id/invitations", s.ListPendingInvitations)

	invitations := s.engine.Group("/invitations")
	invitations.GET("/:token", s.LookupInvitation)
	invitations.POST("/:token/accept", s.AuthRequired(), s.AcceptInvitation)
	invitations.POST("/:token/accept-anonymous", s.AuthRequired(), s.AcceptInvitationAnonymous)
}

func (s *Server) registerLinkRoutes() {
	companies := s.engine.Group("/companies", s.AuthRequired())
	companies.POST("/:id/links", s.CreateMagicLink)
	companies.GET("/:id/links", s.ListMagicLinks)

	s.engine.POST("/links/:id/toggle", s.AuthRequired(), s.ToggleMagicLink)
	s.engine.GET("/l/:linkId", s.ResolveMagicLink)
}

func (s *Server) registerReportRoutes() {
	s.engine.POST("/l/:linkId/reports", s.SubmitReport)

	companies := s.engine.Group("/companies", s.AuthRequired())
	companies.GET("/:id/reports", s.ListReports)

	reports := s.engine.Group("/reports", s.AuthRequired())
	reports.GET("/:id", s.GetReport)
	reports.PATCH("/:id", s.UpdateReport)
}
