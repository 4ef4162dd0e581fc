package market

import (
	"dex_trader/internal/exchange"
	"dex_trader/internal/modules/config"
	"dex_trader/internal/modules/market/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("market",
		fx.Provide(
			service.NewMarket,
			func(m *service.Market) exchange.MarketData { return m },
			func(m *service.Market) exchange.OnChainData { return m },
			func(cfg *config.Config) *service.Blacklist {
				return service.NewBlacklist(cfg.Blacklist)
			},
			func(b *service.Blacklist) exchange.Blacklist { return b },
		),
	)
}
