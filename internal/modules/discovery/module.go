package discovery

import (
	"dex_trader/internal/modules/discovery/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("discovery",
		fx.Provide(
			service.NewFunnel,
		),
	)
}
