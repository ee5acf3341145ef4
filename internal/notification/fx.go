package notification

import (
	"strings"

	"github.com/hearback/hearback/internal/config"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("notification",
	fx.Provide(NewClient),
	fx.Provide(NewEnqueuerFromConfig),
	fx.Provide(NewHandler),
)

// NewEnqueuerFromConfig falls back to the noop enqueuer when no redis is
// configured, the same way the email provider falls back to noop.
func NewEnqueuerFromConfig(log *zap.Logger, cfg config.Config, client *asynq.Client) Enqueuer {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		log.Warn("redis not configured, notifications disabled")
		return NoopEnqueuer{}
	}
	return NewEnqueuer(log, client)
}

func NewClient(lc fx.Lifecycle, cfg config.Config) *asynq.Client {
	client := asynq.NewClient(RedisOpt(cfg))
	lc.Append(fx.StopHook(client.Close))
	return client
}

func RedisOpt(cfg config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}
