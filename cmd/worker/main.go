package main

import (
	"os"

	companyrepo "github.com/hearback/hearback/internal/company/repository"
	"github.com/hearback/hearback/internal/config"
	identityrepo "github.com/hearback/hearback/internal/identity/repository"
	invitationrepo "github.com/hearback/hearback/internal/invitation/repository"
	magicrepo "github.com/hearback/hearback/internal/magiclink/repository"
	"github.com/hearback/hearback/internal/notification"
	"github.com/hearback/hearback/internal/providers/email"
	reportrepo "github.com/hearback/hearback/internal/report/repository"
	"github.com/hearback/hearback/pkg/db"
	"github.com/hearback/hearback/pkg/log"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := log.NewLogger(cfg)
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	conn, err := db.New(cfg)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}

	users, _ := identityrepo.New(conn)
	handler := notification.NewHandler(
		logger,
		cfg,
		invitationrepo.New(conn),
		companyrepo.New(conn),
		users,
		magicrepo.New(conn),
		reportrepo.New(conn),
		email.NewFromConfig(cfg, logger),
	)

	srv := asynq.NewServer(notification.RedisOpt(cfg), asynq.Config{
		Concurrency: 10,
		Logger:      newAsynqLogger(logger),
	})

	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	logger.Info("worker started", zap.String("redis_addr", cfg.RedisAddr))
	if err := srv.Run(mux); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}

type asynqLogger struct {
	log *zap.SugaredLogger
}

func newAsynqLogger(log *zap.Logger) asynq.Logger {
	return &asynqLogger{log: log.Named("asynq").Sugar()}
}

func (l *asynqLogger) Debug(args ...interface{}) { l.log.Debug(args...) }
func (l *asynqLogger) Info(args ...interface{})  { l.log.Info(args...) }
func (l *asynqLogger) Warn(args ...interface{})  { l.log.Warn(args...) }
func (l *asynqLogger) Error(args ...interface{}) { l.log.Error(args...) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.log.Fatal(args...) }
