package service

import (
	"fmt"
	"strings"
	"time"

	"dex_trader/internal/helper"
	"dex_trader/internal/models"
)

func formatPosition(p models.Position) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s (%s) %s\n", p.Symbol, helper.ShortAddr(p.TokenAddress), p.Status)
	fmt.Fprintf(&b, "entry=%s last=%s peak=%s\n", price(p.EntryPrice), price(p.LastPrice), price(p.HighestPrice))
	fmt.Fprintf(&b, "PnL=%s%% peak PnL=%s%%\n", f2(p.ProfitPct(p.LastPrice)), f2(p.ProfitPct(p.HighestPrice)))
	fmt.Fprintf(&b, "amount=%s / %s\n", p.AmountRemaining.StringFixed(4), p.InitialAmount.StringFixed(4))
	if !p.EntryTime.IsZero() {
		fmt.Fprintf(&b, "held=%s\n", time.Since(p.EntryTime).Truncate(time.Second))
	}
	for _, t := range p.Tiers {
		fmt.Fprintf(&b, "  +%s%% → %s%% %s\n", f2(t.ProfitThresholdPct), f2(t.PositionFractionPct), doneMark(t.Executed))
	}
	return strings.TrimRight(b.String(), "\n")
}

func f2(v float64) string { return fmt.Sprintf("%.2f", v) }

func price(v float64) string { return fmt.Sprintf("%.8g", v) }

func doneMark(v bool) string {
	if v {
		return "✅"
	}
	return "⏳"
}
