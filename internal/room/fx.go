package room

import (
	"github.com/smallbiznis/innledger/internal/room/repository"
	"github.com/smallbiznis/innledger/internal/room/service"
	"go.uber.org/fx"
)

var Module = fx.Module("room.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
