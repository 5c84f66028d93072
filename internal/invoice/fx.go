package invoice

import (
	"github.com/smallbiznis/innledger/internal/invoice/render"
	"github.com/smallbiznis/innledger/internal/invoice/repository"
	"github.com/smallbiznis/innledger/internal/invoice/service"
	"github.com/smallbiznis/innledger/internal/invoicenumber"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	invoicenumber.Module,
	fx.Provide(repository.NewRepository),
	fx.Provide(render.NewPDFRenderer),
	fx.Provide(service.NewService),
)
