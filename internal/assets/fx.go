package assets

import "go.uber.org/fx"

var Module = fx.Module("assets.service",
	fx.Provide(NewStore),
	fx.Provide(NewService),
)
