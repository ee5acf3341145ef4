package notification

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer hands notification work to the queue. Enqueue failures are
// logged and swallowed: email delivery never blocks or fails the
// transaction that triggered it.
type Enqueuer interface {
	EnqueueInvitationEmail(ctx context.Context, invitationID snowflake.ID)
	EnqueueReportSubmitted(ctx context.Context, reportID snowflake.ID)
}

type enqueuer struct {
	log    *zap.Logger
	client *asynq.Client
}

func NewEnqueuer(log *zap.Logger, client *asynq.Client) Enqueuer {
	return &enqueuer{
		log:    log.Named("notification.enqueuer"),
		client: client,
	}
}

func (e *enqueuer) EnqueueInvitationEmail(ctx context.Context, invitationID snowflake.ID) {
	task, err := NewInvitationEmailTask(invitationID)
	if err != nil {
		e.log.Error("build invitation email task", zap.Error(err))
		return
	}
	e.enqueue(ctx, task, zap.String("invitation_id", invitationID.String()))
}

func (e *enqueuer) EnqueueReportSubmitted(ctx context.Context, reportID snowflake.ID) {
	task, err := NewReportSubmittedTask(reportID)
	if err != nil {
		e.log.Error("build report submitted task", zap.Error(err))
		return
	}
	e.enqueue(ctx, task, zap.String("report_id", reportID.String()))
}

func (e *enqueuer) enqueue(ctx context.Context, task *asynq.Task, fields ...zap.Field) {
	info, err := e.client.EnqueueContext(ctx, task, asynq.MaxRetry(5))
	if err != nil {
		e.log.Error("enqueue notification task",
			append(fields, zap.String("type", task.Type()), zap.Error(err))...)
		return
	}
	e.log.Debug("notification task enqueued",
		append(fields, zap.String("type", task.Type()), zap.String("task_id", info.ID))...)
}

// NoopEnqueuer satisfies Enqueuer without a queue behind it.
type NoopEnqueuer struct{}

func (NoopEnqueuer) EnqueueInvitationEmail(ctx context.Context, invitationID snowflake.ID) {}
func (NoopEnqueuer) EnqueueReportSubmitted(ctx context.Context, reportID snowflake.ID)     {}
