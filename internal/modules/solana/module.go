package solana

import (
	"net/http"
	"time"

	"dex_trader/internal/exchange"
	"dex_trader/internal/metrics"
	"dex_trader/internal/modules/config"
	"dex_trader/internal/modules/solana/service"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const pollInterval = 2 * time.Second

func newConfirmer(cfg *config.Config, rpc *service.RPC, log *zap.Logger) *service.Confirmer {
	exec := cfg.Execution
	if cfg.Solana.WSURL == "" {
		return service.NewConfirmer(service.NewPollWaiter(rpc, pollInterval), rpc, exec.ConfirmTimeout, exec.ExtendedWait, log)
	}
	return service.NewConfirmer(service.NewSignatureWatcher(cfg.Solana.WSURL), rpc, exec.ConfirmTimeout, exec.ExtendedWait, log)
}

func Module() fx.Option {
	return fx.Module("solana",
		fx.Provide(
			func(cfg *config.Config) *service.RPC { return service.NewRPC(cfg.Solana.RPCURL) },
			newConfirmer,
			func(cfg *config.Config, c *service.Confirmer, log *zap.Logger) *service.Executor {
				client := &http.Client{Timeout: cfg.Execution.Timeout}
				return service.NewExecutor(cfg.Execution.ExecutorURL, client, c, log)
			},
			func(cfg *config.Config, e *service.Executor, log *zap.Logger, m *metrics.Metrics) exchange.Swapper {
				return exchange.NewRetryingSwapper(e, cfg.Execution.Retry, log, m)
			},
			func(cfg *config.Config, rpc *service.RPC) *service.Wallet {
				return service.NewWallet(rpc, cfg.Solana.Wallet)
			},
			func(w *service.Wallet) exchange.Wallet { return w },
		),
	)
}
