package hotel

import (
	"github.com/smallbiznis/innledger/internal/hotel/repository"
	"github.com/smallbiznis/innledger/internal/hotel/service"
	"go.uber.org/fx"
)

var Module = fx.Module("hotel.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewTenantResolver),
	fx.Provide(service.New),
)
