package scoring

import (
	"math"
	"testing"

	"dex_trader/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func breakoutCandidate() models.CandidateToken {
	return models.CandidateToken{
		Address: "tok",
		Boosted: true,
		Indicators: models.IndicatorSet{
			Price:     1.2,
			RSI:       25,
			MACD:      models.MACD{Value: 0.02, Signal: 0.01, Histogram: 0.01},
			Bollinger: models.Bands{Upper: 1.1, Middle: 1.0, Lower: 0.9},
		},
		Txns: models.Txns{
			M5:  models.TxnCount{Buys: 12, Sells: 0},
			H1:  models.TxnCount{Buys: 50, Sells: 50},
			H24: models.TxnCount{Buys: 200, Sells: 100},
		},
		PriceChange: models.Horizons{M5: 20, H1: 60, H6: 120, H24: 200},
	}
}

func TestScoreBreakoutWithZeroSells(t *testing.T) {
	s := Score(breakoutCandidate(), DefaultConfig())

	require.False(t, math.IsNaN(s.Raw) || math.IsInf(s.Raw, 0))
	assert.InDelta(t, 158, s.Raw, 1e-9)
	assert.Greater(t, s.Normalized, 60.0)
}

func TestScoreWithoutAnyTransactions(t *testing.T) {
	tok := breakoutCandidate()
	tok.Txns = models.Txns{}

	s := Score(tok, DefaultConfig())
	require.False(t, math.IsNaN(s.Raw))
	assert.InDelta(t, 158-40, s.Raw, 1e-9)
}

func TestScoreMonotonicInBuySellRatio(t *testing.T) {
	cfg := DefaultConfig()
	base := models.CandidateToken{
		Txns:        models.Txns{H24: models.TxnCount{Buys: 10, Sells: 10}},
		PriceChange: models.Horizons{H1: 5},
	}
	bumped := base
	bumped.Txns.H24.Buys = 16

	assert.InDelta(t, 15, Score(bumped, cfg).Raw-Score(base, cfg).Raw, 1e-9)
}

func TestScoreMonotonicInHolderGrowth(t *testing.T) {
	cfg := DefaultConfig()
	prev := Score(models.CandidateToken{}, cfg).Raw
	for _, pct := range []float64{1, 5, 10, 40} {
		cur := Score(models.CandidateToken{HolderChangePct: pct}, cfg).Raw
		assert.Greater(t, cur, prev)
		prev = cur
	}
}

func TestScoreCappedContributions(t *testing.T) {
	tok := models.CandidateToken{
		SniperProfitUSD: 1_000_000,
		Liquidity:       1000,
		Volume:          models.Horizons{H24: 1_000_000},
	}
	_, parts := Explain(tok, DefaultConfig())

	got := map[string]float64{}
	for _, p := range parts {
		got[p.Name] = p.Points
	}
	assert.Equal(t, 20.0, got["sniper_profit"])
	assert.Equal(t, 10.0, got["volume_liquidity"])
}

func TestScoreUptrendWeight(t *testing.T) {
	cfg := DefaultConfig()
	tok := models.CandidateToken{Uptrend: &models.Score{Raw: 30, Normalized: 50}}

	assert.InDelta(t, 10, Score(tok, cfg).Raw, 1e-9)
}

func TestScoreIchimokuOnlyWhenComputed(t *testing.T) {
	cfg := DefaultConfig()
	tok := models.CandidateToken{Indicators: models.IndicatorSet{Price: 10}}
	assert.Zero(t, Score(tok, cfg).Raw)

	tok.Indicators.Ichimoku = models.Ichimoku{Tenkan: 9, Kijun: 8, SpanA: 8.5, SpanB: 7, Chikou: 11}
	assert.InDelta(t, 20, Score(tok, cfg).Raw, 1e-9)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{raw: -50, want: 0},
		{raw: 0, want: 0},
		{raw: 100, want: 50},
		{raw: 200, want: 100},
		{raw: 500, want: 100},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Normalize(tt.raw, 200), 1e-9)
	}
	assert.Zero(t, Normalize(10, 0))
}

func TestBuySellRatio(t *testing.T) {
	assert.Equal(t, 0.0, BuySellRatio(models.TxnCount{}))
	assert.Equal(t, 7.0, BuySellRatio(models.TxnCount{Buys: 7}))
	assert.Equal(t, 2.0, BuySellRatio(models.TxnCount{Buys: 8, Sells: 4}))
}
