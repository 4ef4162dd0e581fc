package main

import (
	"context"
	"log"

	"dex_trader/internal/metrics"
	"dex_trader/internal/modules/bootstrap"
	"dex_trader/internal/modules/config"
	"dex_trader/internal/modules/discovery"
	"dex_trader/internal/modules/health"
	"dex_trader/internal/modules/market"
	"dex_trader/internal/modules/solana"
	telegram "dex_trader/internal/modules/telegram_bot"
	"dex_trader/internal/runner"
	"dex_trader/pkg/logger"
	"dex_trader/pkg/tracing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const serviceName = "dex_trader"

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger.SetServiceName(serviceName)
	return logger.New(cfg.Log)
}

func initTracing(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) error {
	if !cfg.Tracing.Enabled {
		return nil
	}
	tracing.SetServiceName(serviceName)
	_, closer, err := tracing.InitTracer(tracing.Config{Host: cfg.Tracing.Host, Port: cfg.Tracing.Port})
	if err != nil {
		return err
	}
	log.Info("tracing enabled", zap.String("host", cfg.Tracing.Host), zap.Int("port", cfg.Tracing.Port))
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closer()
			return nil
		},
	})
	return nil
}

func main() {
	app := fx.New(
		config.Module(),
		fx.Provide(newLogger),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
		fx.Invoke(initTracing),
		metrics.Module(),
		market.Module(),
		solana.Module(),
		discovery.Module(),
		telegram.Module(),
		health.Module(),
		runner.Module(),
		bootstrap.Module(),
	)
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}
	app.Run()
}
