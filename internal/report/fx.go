package report

import (
	"github.com/hearback/hearback/internal/report/repository"
	"github.com/hearback/hearback/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
