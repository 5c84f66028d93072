package invoicenumber

import "go.uber.org/fx"

var Module = fx.Module("invoicenumber",
	fx.Provide(New),
	fx.Provide(Provide),
)
