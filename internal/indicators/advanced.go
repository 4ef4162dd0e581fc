package indicators

import (
	"math"

	"dex_trader/internal/models"

	talib "github.com/markcheno/go-talib"
)

func computeAdvanced(set *models.IndicatorSet, s series) {
	set.PSAR = PSAR(s.highs, s.lows, 0.02, 0.2)
	set.Vortex = VortexIndicator(s.highs, s.lows, s.closes, 14)
	set.CCI = CCI(s.highs, s.lows, s.closes, s.p)
	set.PPO = PPO(s.closes, 12, 26, 9)
	set.AO = AwesomeOscillator(s.highs, s.lows, 5, 34)
	set.Keltner = Keltner(s, 2)
	if s.n >= minIchimoku {
		set.Ichimoku = IchimokuCloud(s.highs, s.lows, s.closes)
	}
}

func PSAR(highs, lows []float64, step, maxStep float64) float64 {
	if len(highs) < 2 {
		return 0
	}
	return last(talib.Sar(highs, lows, step, maxStep))
}

// VortexIndicator: VI± = Σ|VM±| / ΣTR за period свечей.
func VortexIndicator(highs, lows, closes []float64, period int) models.Vortex {
	n := len(closes)
	if n < period+1 {
		return models.Vortex{}
	}
	var plus, minus, tr float64
	for i := n - period; i < n; i++ {
		plus += math.Abs(highs[i] - lows[i-1])
		minus += math.Abs(lows[i] - highs[i-1])
		tr += trueRange(highs[i], lows[i], closes[i-1])
	}
	if tr == 0 {
		return models.Vortex{}
	}
	return models.Vortex{Plus: plus / tr, Minus: minus / tr}
}

func CCI(highs, lows, closes []float64, period int) float64 {
	if period <= 1 || len(closes) < period {
		return 0
	}
	return last(talib.Cci(highs, lows, closes, period))
}

// PPO это процентный MACD, (EMAfast-EMAslow)/EMAslow*100 со своей сигнальной EMA.
func PPO(values []float64, fast, slow, signal int) models.MACD {
	if len(values) < slow+signal-1 {
		return models.MACD{}
	}
	ef, es := emaSeries(values, fast), emaSeries(values, slow)
	off := len(ef) - len(es)
	line := make([]float64, len(es))
	for i := range es {
		if es[i] != 0 {
			line[i] = (ef[off+i] - es[i]) / es[i] * 100
		}
	}
	sig := emaSeries(line, signal)
	if len(sig) == 0 {
		return models.MACD{}
	}
	m := models.MACD{Value: last(line), Signal: last(sig)}
	m.Histogram = m.Value - m.Signal
	return m
}

// AwesomeOscillator: SMA(fast) - SMA(slow) медианной цены.
func AwesomeOscillator(highs, lows []float64, fast, slow int) float64 {
	if len(highs) < slow {
		return 0
	}
	median := make([]float64, slow)
	h, l := tail(highs, slow), tail(lows, slow)
	for i := range median {
		median[i] = (h[i] + l[i]) / 2
	}
	return mean(tail(median, fast)) - mean(median)
}

// Keltner: EMA(P) ± k·ATR(min(14,P)).
func Keltner(s series, k float64) models.Bands {
	mid := EMA(s.closes, s.p)
	atr := ATR(s.highs, s.lows, s.closes, min(14, s.p))
	if mid == 0 {
		return models.Bands{}
	}
	return models.Bands{Upper: mid + k*atr, Middle: mid, Lower: mid - k*atr}
}

// IchimokuCloud: 9/26/52, chikou = close 26 свечей назад.
func IchimokuCloud(highs, lows, closes []float64) models.Ichimoku {
	n := len(closes)
	if n < minIchimoku {
		return models.Ichimoku{}
	}
	ich := models.Ichimoku{
		Tenkan: midRange(highs, lows, 9),
		Kijun:  midRange(highs, lows, 26),
		SpanB:  midRange(highs, lows, 52),
		Chikou: closes[n-1-26],
	}
	ich.SpanA = (ich.Tenkan + ich.Kijun) / 2
	return ich
}
