package invitation

import (
	"github.com/hearback/hearback/internal/invitation/repository"
	"github.com/hearback/hearback/internal/invitation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invitation.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
