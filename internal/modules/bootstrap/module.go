package bootstrap

import (
	"context"
	"time"

	"dex_trader/internal/modules/bootstrap/service"
	"dex_trader/internal/modules/config"
	solana "dex_trader/internal/modules/solana/service"
	"dex_trader/internal/notify"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const preflightTimeout = 15 * time.Second

func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			func(cfg *config.Config, log *zap.Logger, w *solana.Wallet, n notify.Notifier) *service.Preflight {
				return service.NewPreflight(cfg, log, w, n)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, p *service.Preflight) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					// не держим старт приложения на медленном RPC
					go func() {
						ctx, cancel := context.WithTimeout(context.Background(), preflightTimeout)
						defer cancel()
						p.Run(ctx)
					}()
					return nil
				},
			})
		}),
	)
}
