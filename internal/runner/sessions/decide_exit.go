package sessions

import (
	"fmt"
	"sort"

	"dex_trader/internal/helper"
	"dex_trader/internal/models"
	"dex_trader/internal/modules/config"
)

func none() models.ExitDecision {
	return models.ExitDecision{Action: models.ActionNone, TierIndex: -1}
}

func fullSell(kind, reason string) models.ExitDecision {
	return models.ExitDecision{Action: models.ActionFullSell, Kind: kind, Reason: reason, TierIndex: -1, FractionPct: 100}
}

// decideExit проверяет правила по порядку, срабатывает первое.
// Позицию не меняет. holderChange == nil: изменение холдеров неизвестно.
func decideExit(p *models.Position, price float64, ind models.IndicatorSet, holderChange *float64, cfg config.Position) models.ExitDecision {
	profit := p.ProfitPct(price)

	// 1) ступени, от старшей к младшей
	order := make([]int, len(p.Tiers))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return p.Tiers[order[a]].ProfitThresholdPct > p.Tiers[order[b]].ProfitThresholdPct
	})
	for _, i := range order {
		t := p.Tiers[i]
		if t.Executed || profit < t.ProfitThresholdPct {
			continue
		}
		return models.ExitDecision{
			Action:      models.ActionPartialSell,
			Kind:        "tier",
			TierIndex:   i,
			FractionPct: t.PositionFractionPct,
			Reason: fmt.Sprintf("tier +%.0f%% reached (profit %.2f%%), selling %.0f%% of initial",
				t.ProfitThresholdPct, profit, t.PositionFractionPct),
		}
	}

	// 2) полный тейк
	if cfg.TakeProfitPct > 0 && profit >= cfg.TakeProfitPct {
		return fullSell("take_profit", fmt.Sprintf("take profit: %.2f%% >= %.2f%%", profit, cfg.TakeProfitPct))
	}

	// 3) стоп-лосс
	if cfg.StopLossPct > 0 && profit <= -cfg.StopLossPct {
		return fullSell("stop_loss", fmt.Sprintf("stop loss: %.2f%% <= -%.2f%%", profit, cfg.StopLossPct))
	}

	// 4) трейлинг, только когда был рост
	if p.HighestPrice > p.EntryPrice {
		stop, kind := trailingStop(p, price, ind.ATR, cfg.Trailing)
		if stop > 0 && price < stop {
			return fullSell("trailing_"+kindLabel(kind), fmt.Sprintf(
				"trailing stop, %s: -%.2f%% from peak %.8g (stop %.8g)",
				kind, helper.PctBelow(p.HighestPrice, price), p.HighestPrice, stop))
		}
	}

	// 5) индикаторы
	ex := cfg.Exit
	if ex.RSIOverbought > 0 && ind.RSI > ex.RSIOverbought {
		return fullSell("rsi", fmt.Sprintf("RSI overbought: %.1f > %.1f", ind.RSI, ex.RSIOverbought))
	}
	if ex.BelowBollingerMiddle && ind.Bollinger.Middle > 0 && price < ind.Bollinger.Middle {
		return fullSell("bollinger", fmt.Sprintf("price %.8g below Bollinger middle %.8g", price, ind.Bollinger.Middle))
	}
	if ex.HolderFloorPct < 0 && holderChange != nil && *holderChange < ex.HolderFloorPct {
		return fullSell("holders", fmt.Sprintf("holder change %.2f%% < %.2f%%", *holderChange, ex.HolderFloorPct))
	}

	return none()
}

func kindLabel(kind string) string {
	if kind == trailATR {
		return "atr"
	}
	return "pct"
}
