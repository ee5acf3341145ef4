package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	companydomain "github.com/hearback/hearback/internal/company/domain"
	"github.com/hearback/hearback/internal/config"
	identitydomain "github.com/hearback/hearback/internal/identity/domain"
	invitationdomain "github.com/hearback/hearback/internal/invitation/domain"
	magicdomain "github.com/hearback/hearback/internal/magiclink/domain"
	"github.com/hearback/hearback/internal/providers/email"
	reportdomain "github.com/hearback/hearback/internal/report/domain"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

var invitationTmpl = template.Must(template.New("invitation").Parse(`
<p>Hi,</p>
<p>{{.InviterName}} invited you to join <strong>{{.CompanyName}}</strong> on {{.AppName}}.</p>
<p><a href="{{.AcceptURL}}">Accept the invitation</a></p>
<p>The invitation expires on {{.ExpiresAt}}.</p>
`))

var reportSubmittedTmpl = template.Must(template.New("report_submitted").Parse(`
<p>Hi {{.ManagerName}},</p>
<p>A new report was submitted to <strong>{{.CompanyName}}</strong> through your intake link.</p>
<p><strong>{{.Title}}</strong> ({{.Category}})</p>
<p><a href="{{.ReportURL}}">Open the report</a></p>
`))

// Handler consumes notification tasks. Entities are re-read at delivery
// time: a row that vanished since enqueue means the email is simply
// dropped, while a provider failure comes back as an error so asynq
// retries the delivery.
type Handler struct {
	log         *zap.Logger
	cfg         config.Config
	invitations invitationdomain.Repository
	companies   companydomain.Repository
	users       identitydomain.Repository
	links       magicdomain.Repository
	reports     reportdomain.Repository
	provider    email.Provider
}

func NewHandler(
	log *zap.Logger,
	cfg config.Config,
	invitations invitationdomain.Repository,
	companies companydomain.Repository,
	users identitydomain.Repository,
	links magicdomain.Repository,
	reports reportdomain.Repository,
	provider email.Provider,
) *Handler {
	return &Handler{
		log:         log.Named("notification.handler"),
		cfg:         cfg,
		invitations: invitations,
		companies:   companies,
		users:       users,
		links:       links,
		reports:     reports,
		provider:    provider,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeInvitationEmail, h.HandleInvitationEmail)
	mux.HandleFunc(TypeReportSubmitted, h.HandleReportSubmitted)
}

func (h *Handler) HandleInvitationEmail(ctx context.Context, t *asynq.Task) error {
	var payload InvitationEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	inv, err := h.invitations.FindByID(ctx, payload.InvitationID)
	if err != nil {
		if errors.Is(err, invitationdomain.ErrInvitationNotFound) {
			h.log.Warn("invitation gone, dropping email",
				zap.String("invitation_id", payload.InvitationID.String()))
			return nil
		}
		return err
	}
	if inv.Status != invitationdomain.StatusPending {
		h.log.Info("invitation no longer pending, dropping email",
			zap.String("invitation_id", inv.ID.String()),
			zap.String("status", string(inv.Status)))
		return nil
	}

	company, err := h.companies.FindCompanyByID(ctx, inv.CompanyID)
	if err != nil {
		if errors.Is(err, companydomain.ErrCompanyNotFound) {
			h.log.Warn("company gone, dropping invitation email",
				zap.String("invitation_id", inv.ID.String()))
			return nil
		}
		return err
	}

	inviterName := company.Name
	if inviter, err := h.users.FindByID(ctx, inv.InvitedBy); err == nil && inviter.DisplayName != "" {
		inviterName = inviter.DisplayName
	}

	body, err := render(invitationTmpl, map[string]any{
		"InviterName": inviterName,
		"CompanyName": company.Name,
		"AppName":     h.cfg.AppName,
		"AcceptURL":   fmt.Sprintf("%s/invitations/%s", h.cfg.BaseURL, inv.Token),
		"ExpiresAt":   inv.ExpiresAt.Format("Jan 2, 2006"),
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("You're invited to join %s", company.Name)
	if err := h.provider.Send(ctx, inv.Email, subject, body); err != nil {
		return fmt.Errorf("send invitation email: %w", err)
	}

	h.log.Info("invitation email sent", zap.String("invitation_id", inv.ID.String()))
	return nil
}

func (h *Handler) HandleReportSubmitted(ctx context.Context, t *asynq.Task) error {
	var payload ReportSubmittedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	report, err := h.reports.FindByID(ctx, payload.ReportID)
	if err != nil {
		if errors.Is(err, reportdomain.ErrReportNotFound) {
			h.log.Warn("report gone, dropping email",
				zap.String("report_id", payload.ReportID.String()))
			return nil
		}
		return err
	}

	link, err := h.links.FindByID(ctx, report.MagicLinkID)
	if err != nil {
		if errors.Is(err, magicdomain.ErrLinkNotFound) {
			h.log.Warn("magic link gone, dropping report email",
				zap.String("report_id", report.ID.String()))
			return nil
		}
		return err
	}

	manager, err := h.users.FindByID(ctx, link.CreatedBy)
	if err != nil {
		if errors.Is(err, identitydomain.ErrUserNotFound) {
			h.log.Warn("link creator gone, dropping report email",
				zap.String("report_id", report.ID.String()))
			return nil
		}
		return err
	}
	if manager.Email == nil {
		h.log.Warn("link creator has no email, dropping report email",
			zap.String("report_id", report.ID.String()),
			zap.String("user_id", manager.ID.String()))
		return nil
	}

	company, err := h.companies.FindCompanyByID(ctx, report.CompanyID)
	if err != nil {
		if errors.Is(err, companydomain.ErrCompanyNotFound) {
			h.log.Warn("company gone, dropping report email",
				zap.String("report_id", report.ID.String()))
			return nil
		}
		return err
	}

	body, err := render(reportSubmittedTmpl, map[string]any{
		"ManagerName": manager.DisplayName,
		"CompanyName": company.Name,
		"Title":       report.Title,
		"Category":    string(report.Category),
		"ReportURL":   fmt.Sprintf("%s/reports/%s", h.cfg.BaseURL, report.ID.String()),
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("New report for %s", company.Name)
	if err := h.provider.Send(ctx, *manager.Email, subject, body); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}

	h.log.Info("report email sent", zap.String("report_id", report.ID.String()))
	return nil
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
