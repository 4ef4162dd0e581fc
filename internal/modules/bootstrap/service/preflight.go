package service

import (
	"context"
	"fmt"
	"strings"

	"dex_trader/internal/modules/config"
	"dex_trader/internal/notify"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type nativeBalancer interface {
	NativeBalance(ctx context.Context) (decimal.Decimal, error)
}

// Preflight: проверки при старте. Ничего не блокирует,
// только предупреждает оператора о том, что торговля не сможет пойти.
type Preflight struct {
	cfg      *config.Config
	log      *zap.Logger
	wallet   nativeBalancer
	notifier notify.Notifier
}

func NewPreflight(cfg *config.Config, log *zap.Logger, wallet nativeBalancer, notifier notify.Notifier) *Preflight {
	return &Preflight{cfg: cfg, log: log.Named("preflight"), wallet: wallet, notifier: notifier}
}

// Run возвращает список предупреждений (пустой: всё ок).
func (p *Preflight) Run(ctx context.Context) []string {
	p.log.Info("config",
		zap.Duration("discovery_interval", p.cfg.Discovery.Interval),
		zap.Duration("monitor_interval", p.cfg.Position.MonitorInterval),
		zap.Float64("buy_amount_sol", p.cfg.Position.BuyAmountSOL),
		zap.String("admission_mode", p.cfg.Admission.Mode),
		zap.Bool("validation", p.cfg.Discovery.Validation.Enabled),
		zap.Int("tiers", len(p.cfg.Position.Tiers)),
		zap.Int("blacklist", len(p.cfg.Blacklist)),
	)

	var warns []string
	if p.cfg.Execution.ExecutorURL == "" {
		warns = append(warns, "executor_url не задан: свопы будут падать")
	}
	if p.cfg.Sources.Moralis.APIKey == "" {
		warns = append(warns, "нет ключа Moralis: валидация холдеров не сработает")
	}

	if p.cfg.Solana.Wallet == "" {
		warns = append(warns, "адрес кошелька не задан: балансы будут оцениваться")
	} else {
		bal, err := p.wallet.NativeBalance(ctx)
		switch {
		case err != nil:
			p.log.Warn("wallet balance", zap.Error(err))
			warns = append(warns, fmt.Sprintf("не удалось прочитать баланс кошелька: %v", err))
		case bal.LessThan(decimal.NewFromFloat(p.cfg.Position.BuyAmountSOL)):
			warns = append(warns, fmt.Sprintf("баланс %s SOL меньше размера покупки %.3f SOL",
				bal.StringFixed(4), p.cfg.Position.BuyAmountSOL))
		default:
			p.log.Info("wallet balance", zap.String("sol", bal.String()))
		}
	}

	for _, w := range warns {
		p.log.Warn(w)
	}
	if len(warns) > 0 {
		p.notifier.Send("⚠️ Preflight:\n- " + strings.Join(warns, "\n- "))
	}
	return warns
}
