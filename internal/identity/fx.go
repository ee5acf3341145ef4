package identity

import (
	"github.com/hearback/hearback/internal/identity/repository"
	"github.com/hearback/hearback/internal/identity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("identity.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
