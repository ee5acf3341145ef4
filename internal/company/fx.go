package company

import (
	"github.com/hearback/hearback/internal/company/repository"
	"github.com/hearback/hearback/internal/company/service"
	"go.uber.org/fx"
)

var Module = fx.Module("company.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
