package runner

import (
	"context"

	"dex_trader/internal/runner/sessions"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			sessions.NewLifecycle, // *sessions.Lifecycle
			New,                   // *Runner
		),
		fx.Invoke(func(lc fx.Lifecycle, r *Runner) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					r.Start()
					return nil
				},
				OnStop: func(ctx context.Context) error {
					return r.Stop(ctx)
				},
			})
		}),
	)
}
