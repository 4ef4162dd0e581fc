package sessions

import (
	"math"
	"testing"

	"dex_trader/internal/models"
	"dex_trader/internal/modules/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func peakPosition(entry, highest float64) *models.Position {
	return &models.Position{EntryPrice: entry, HighestPrice: highest, LastPrice: highest}
}

func noTiersConfig() config.Position {
	pc := config.Default().Position
	pc.Tiers = nil
	pc.Exit = config.Exit{}
	return pc
}

func TestTrailingPercentageAfterPeak(t *testing.T) {
	pc := noTiersConfig()
	pc.Trailing.Percent = 3
	pc.Trailing.UseMax = true

	p := peakPosition(100, 120)
	for _, price := range []float64{115.2, 105} {
		dec := decideExit(p, price, models.IndicatorSet{ATR: 2}, nil, pc)
		require.Equal(t, models.ActionFullSell, dec.Action, "price %v", price)
		assert.Contains(t, dec.Reason, "trailing stop, percentage-based")
		assert.Equal(t, "trailing_pct", dec.Kind)
	}

	dec := decideExit(p, 115.2, models.IndicatorSet{ATR: 2}, nil, pc)
	assert.Contains(t, dec.Reason, "-4.00% from peak")
}

func TestTrailingATRBased(t *testing.T) {
	pc := noTiersConfig()
	pc.Trailing.Percent = 3
	pc.Trailing.UseMax = true

	// profit 18% → множитель 2.5, atrStop = 120 - 1.25 = 118.75 > pctStop 116.4
	dec := decideExit(peakPosition(100, 120), 118, models.IndicatorSet{ATR: 0.5}, nil, pc)
	require.Equal(t, models.ActionFullSell, dec.Action)
	assert.Contains(t, dec.Reason, "trailing stop, ATR-based")

	// без use_max работает только ATR стоп
	pc.Trailing.UseMax = false
	dec = decideExit(peakPosition(100, 120), 116, models.IndicatorSet{ATR: 2}, nil, pc)
	assert.Equal(t, models.ActionNone, dec.Action, "atrStop=115, price 116 above it")
}

func TestTrailingStopIsMaxOfBoth(t *testing.T) {
	tr := config.Default().Position.Trailing
	tr.Percent = 5
	tr.UseMax = true
	p := peakPosition(100, 140)

	for atr := 0.1; atr < 20; atr += 0.7 {
		for _, price := range []float64{110, 125, 138} {
			stop, kind := trailingStop(p, price, atr, tr)
			pct := 140 * 0.95
			atrStop := 140 - atrMultiplier(p.ProfitPct(price), tr)*atr
			assert.InDelta(t, math.Max(pct, atrStop), stop, 1e-9)
			if pct >= atrStop {
				assert.Equal(t, trailPercent, kind)
			} else {
				assert.Equal(t, trailATR, kind)
			}
		}
	}
}

func TestTrailingNeedsGainAboveEntry(t *testing.T) {
	pc := noTiersConfig()
	dec := decideExit(peakPosition(100, 100), 95, models.IndicatorSet{ATR: 1}, nil, pc)
	assert.Equal(t, models.ActionNone, dec.Action)
}

func TestTrailingWithoutATRUsesPercent(t *testing.T) {
	pc := noTiersConfig()
	pc.Trailing.Percent = 10
	dec := decideExit(peakPosition(100, 130), 116, models.IndicatorSet{}, nil, pc)
	require.Equal(t, models.ActionFullSell, dec.Action)
	assert.Contains(t, dec.Reason, "percentage-based")
}

func TestATRMultiplierTable(t *testing.T) {
	tr := config.Default().Position.Trailing
	assert.Equal(t, 1.5, atrMultiplier(70, tr))
	assert.Equal(t, 2.0, atrMultiplier(30, tr))
	assert.Equal(t, 2.5, atrMultiplier(16, tr))
	assert.Equal(t, tr.DefaultATRMultiplier, atrMultiplier(3, tr))
}

func TestDecideExitRuleOrder(t *testing.T) {
	pc := config.Default().Position
	holderDrop := -8.0

	cases := []struct {
		name    string
		pos     *models.Position
		price   float64
		ind     models.IndicatorSet
		holders *float64
		action  models.ExitAction
		kind    string
	}{
		{"highest tier first", withTiers(peakPosition(100, 100), pc.Tiers), 135, models.IndicatorSet{}, nil, models.ActionPartialSell, "tier"},
		{"take profit after tiers", withExecutedTiers(peakPosition(100, 100), pc.Tiers), 201, models.IndicatorSet{RSI: 90}, nil, models.ActionFullSell, "take_profit"},
		{"stop loss", withTiers(peakPosition(100, 100), pc.Tiers), 84, models.IndicatorSet{}, nil, models.ActionFullSell, "stop_loss"},
		{"rsi overbought", peakPosition(100, 100), 101, models.IndicatorSet{RSI: 85}, nil, models.ActionFullSell, "rsi"},
		{"below bollinger middle", peakPosition(100, 100), 101, models.IndicatorSet{Bollinger: models.Bands{Middle: 102}}, nil, models.ActionFullSell, "bollinger"},
		{"holder floor", peakPosition(100, 100), 101, models.IndicatorSet{}, &holderDrop, models.ActionFullSell, "holders"},
		{"holders unknown", peakPosition(100, 100), 101, models.IndicatorSet{}, nil, models.ActionNone, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dec := decideExit(tc.pos, tc.price, tc.ind, tc.holders, pc)
			assert.Equal(t, tc.action, dec.Action)
			assert.Equal(t, tc.kind, dec.Kind)
		})
	}

	dec := decideExit(withTiers(peakPosition(100, 100), pc.Tiers), 135, models.IndicatorSet{}, nil, pc)
	assert.Equal(t, 1, dec.TierIndex, "35% hits the 30% tier before the 15% one")
}

func TestRSIExitDisabledByZero(t *testing.T) {
	pc := noTiersConfig()
	pc.Exit.RSIOverbought = 0
	dec := decideExit(peakPosition(100, 100), 101, models.IndicatorSet{RSI: 99}, nil, pc)
	assert.Equal(t, models.ActionNone, dec.Action)
}

func withTiers(p *models.Position, tiers []models.Tier) *models.Position {
	p.Tiers = append([]models.Tier(nil), tiers...)
	return p
}

func withExecutedTiers(p *models.Position, tiers []models.Tier) *models.Position {
	withTiers(p, tiers)
	for i := range p.Tiers {
		p.Tiers[i].Executed = true
	}
	return p
}
