package magiclink

import (
	"github.com/hearback/hearback/internal/magiclink/repository"
	"github.com/hearback/hearback/internal/magiclink/service"
	"go.uber.org/fx"
)

var Module = fx.Module("magiclink.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
