package sessions

import (
	"context"

	"dex_trader/internal/exchange"
	"dex_trader/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// sellTier: частичная продажа. Ступень помечается до свопа: повторный тик
// во время исполнения её уже не возьмёт.
func (l *Lifecycle) sellTier(ctx context.Context, dec models.ExitDecision) (TickResult, error) {
	p := l.current()
	l.update(func(p *models.Position) { p.Tiers[dec.TierIndex].Executed = true })

	amount := p.InitialAmount.Mul(decimal.NewFromFloat(dec.FractionPct).Div(decimal.NewFromInt(100)))
	if amount.GreaterThan(p.AmountRemaining) {
		amount = p.AmountRemaining
	}

	res, err := l.sell(ctx, p, amount, false)
	if err != nil {
		l.metrics.Exit("failed", dec.Kind)
		if errors.Is(err, exchange.ErrUnconfirmed) {
			// продажа могла пройти: флаг оставляем, остаток сверяем с кошельком
			l.refreshBalance(ctx, nil)
			l.notifier.Sendf("⚠️ [%s] частичная продажа не подтверждена, ступень +%.0f%% считаем исполненной: %v",
				p.Symbol, p.Tiers[dec.TierIndex].ProfitThresholdPct, err)
		} else if l.cfg.Position.RollbackTierOnFailure {
			l.update(func(p *models.Position) { p.Tiers[dec.TierIndex].Executed = false })
			l.notifier.Sendf("❗️ [%s] частичная продажа не прошла, ступень вернём в работу: %v", p.Symbol, err)
		} else {
			l.notifier.Sendf("❗️ [%s] частичная продажа не прошла: %v", p.Symbol, err)
		}
		return TickResult{Action: models.ActionNone, Reason: dec.Reason, Position: l.closeIfEmpty(p)}, errors.Wrap(err, "partial sell")
	}

	sold := soldAmount(res, amount, p.Decimals)
	l.refreshBalance(ctx, &sold)
	l.metrics.Exit(string(models.ActionPartialSell), dec.Kind)

	l.log.Info("partial sell",
		zap.String("symbol", p.Symbol),
		zap.String("reason", dec.Reason),
		zap.String("sold", sold.String()),
		zap.String("remaining", p.AmountRemaining.String()),
		zap.String("tx", res.Signature),
	)
	l.notifier.Sendf("💰 [%s] Частичная фиксация %.0f%% | %s | остаток=%s",
		p.Symbol, dec.FractionPct, dec.Reason, p.AmountRemaining.StringFixed(4))

	return TickResult{Action: models.ActionPartialSell, Reason: dec.Reason, Position: l.closeIfEmpty(p)}, nil
}

// sellAll: продажа всего остатка. Неудача оставляет позицию, следующий тик повторит.
// После успешной продажи слот освобождается всегда, остаток считается пылью.
func (l *Lifecycle) sellAll(ctx context.Context, dec models.ExitDecision) (TickResult, error) {
	p := l.current()
	amount := p.AmountRemaining

	res, err := l.sell(ctx, p, amount, true)
	if err != nil {
		l.metrics.Exit("failed", dec.Kind)
		if errors.Is(err, exchange.ErrUnconfirmed) {
			l.refreshBalance(ctx, nil)
		}
		l.notifier.Sendf("❗️ [%s] выход не удался (%s): %v", p.Symbol, dec.Reason, err)
		return TickResult{Action: models.ActionNone, Reason: dec.Reason, Position: l.closeIfEmpty(p)}, errors.Wrap(err, "full sell")
	}

	sold := soldAmount(res, amount, p.Decimals)
	l.refreshBalance(ctx, &sold)
	l.metrics.Exit(string(models.ActionFullSell), dec.Kind)

	profit := p.ProfitPct(p.LastPrice)
	l.log.Info("full sell",
		zap.String("symbol", p.Symbol),
		zap.String("reason", dec.Reason),
		zap.Float64("profit_pct", profit),
		zap.String("remaining", p.AmountRemaining.String()),
		zap.String("tx", res.Signature),
	)
	l.notifier.Sendf("🔴 [%s] Выход | %s | PnL=%.2f%%", p.Symbol, dec.Reason, profit)
	if !p.Empty() {
		l.log.Warn("dust left after full sell",
			zap.String("symbol", p.Symbol),
			zap.String("dust", p.AmountRemaining.String()),
		)
		l.notifier.Sendf("⚠️ [%s] после выхода на кошельке осталось %s, позиция снята с учёта",
			p.Symbol, p.AmountRemaining.StringFixed(4))
	}

	return TickResult{Action: models.ActionFullSell, Reason: dec.Reason, Position: l.release(p)}, nil
}

func (l *Lifecycle) sell(ctx context.Context, p *models.Position, amount decimal.Decimal, keepAmount bool) (exchange.SwapResult, error) {
	base := exchange.ToBaseUnits(amount, p.Decimals)
	if !base.IsPositive() {
		return exchange.SwapResult{}, errors.Wrapf(exchange.ErrSwapFailed, "amount %s is below one unit", amount)
	}
	return l.swapper.ExecuteSwap(ctx, p.TokenAddress, exchange.SOLMint, base,
		exchange.SwapOpts{SlippageBps: l.cfg.Position.SlippageBps, KeepAmount: keepAmount})
}

// soldAmount: реально отправленный объём (ретраи могут его уменьшить).
func soldAmount(res exchange.SwapResult, requested decimal.Decimal, decimals int32) decimal.Decimal {
	if res.InputAmount.IsPositive() {
		return exchange.FromBaseUnits(res.InputAmount, decimals)
	}
	return requested
}

// refreshBalance перечитывает остаток из кошелька. Если кошелёк недоступен
// и sold задан, остаток = остаток − sold.
func (l *Lifecycle) refreshBalance(ctx context.Context, sold *decimal.Decimal) {
	p := l.current()
	bal, err := l.wallet.TokenBalance(ctx, p.TokenAddress)
	if err != nil {
		l.log.Warn("balance read failed", zap.String("token", p.TokenAddress), zap.Error(err))
	}

	l.update(func(p *models.Position) {
		switch {
		case err == nil:
			p.AmountRemaining = bal.Amount
		case sold != nil:
			p.AmountRemaining = decimal.Max(decimal.Zero, p.AmountRemaining.Sub(*sold))
		default:
			return
		}
		if p.Empty() {
			p.Status = models.StatusClosed
		} else if p.AmountRemaining.LessThan(p.InitialAmount) {
			p.Status = models.StatusPartiallyClosed
		}
	})
}

// closeIfEmpty освобождает слот, если остаток меньше одной единицы.
func (l *Lifecycle) closeIfEmpty(p *models.Position) *models.Position {
	if !p.Empty() {
		return p.Clone()
	}
	return l.release(p)
}

// release снимает позицию со слота безусловно.
func (l *Lifecycle) release(p *models.Position) *models.Position {
	snap := p.Clone()
	snap.Status = models.StatusClosed
	l.setPosition(nil)
	l.metrics.PositionClosed()
	l.log.Info("position closed", zap.String("symbol", p.Symbol))
	return snap
}
