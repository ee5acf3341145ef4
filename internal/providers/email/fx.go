package email

import (
	"github.com/hearback/hearback/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	switch cfg.Email.Provider {
	case "sendgrid":
		if cfg.Email.SendGridAPIKey == "" {
			log.Warn("sendgrid selected but SENDGRID_API_KEY is empty, falling back to noop provider")
			return &NoOpProvider{}
		}
		return NewSendGrid(cfg.Email.SendGridAPIKey, cfg.Email.From, cfg.AppName)
	case "smtp":
		return NewSMTP(SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
			From:     cfg.Email.From,
		})
	default:
		return &NoOpProvider{}
	}
}
