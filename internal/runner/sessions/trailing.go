package sessions

import (
	"sort"

	"dex_trader/internal/models"
	"dex_trader/internal/modules/config"
)

const (
	trailPercent = "percentage-based"
	trailATR     = "ATR-based"
)

// atrMultiplier: множитель ATR по текущему профиту, таблица по убыванию
// порога, первая подходящая ступень, иначе дефолт.
func atrMultiplier(profitPct float64, t config.Trailing) float64 {
	steps := append([]config.ATRStep(nil), t.ATRTable...)
	sort.Slice(steps, func(i, j int) bool { return steps[i].ProfitPct > steps[j].ProfitPct })
	for _, s := range steps {
		if profitPct >= s.ProfitPct {
			return s.Multiplier
		}
	}
	return t.DefaultATRMultiplier
}

// trailingStop: уровень стопа и его тип. 0 значит стопа нет.
func trailingStop(p *models.Position, price, atr float64, t config.Trailing) (float64, string) {
	var pctStop float64
	if t.Percent > 0 {
		pctStop = p.HighestPrice * (1 - t.Percent/100)
	}
	if atr <= 0 {
		return pctStop, trailPercent
	}

	atrStop := p.HighestPrice - atrMultiplier(p.ProfitPct(price), t)*atr
	if !t.UseMax || pctStop <= 0 {
		return atrStop, trailATR
	}
	if pctStop >= atrStop {
		return pctStop, trailPercent
	}
	return atrStop, trailATR
}
