package indicators

import (
	"dex_trader/internal/models"

	talib "github.com/markcheno/go-talib"
)

func computeIntermediate(set *models.IndicatorSet, s series) {
	set.DEMA = DEMA(s.closes, s.p)
	set.TEMA = TEMA(s.closes, s.p)
	set.VWMA = VWMA(s.closes, s.volumes, s.p)
	set.MACD = ScaledMACD(s.closes, s.p)
	set.Stochastic = StochasticKD(s.highs, s.lows, s.closes, 14, 3)
	set.WilliamsR = WilliamsR(s.highs, s.lows, s.closes, 14)
	set.ROC = ROC(s.closes, 12)
	set.Bollinger = Bollinger(s.closes, s.p, 2)
}

// DEMA = 2*EMA1 - EMA(EMA1), нужно 2P значений.
func DEMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < 2*period {
		return 0
	}
	e1 := emaSeries(values, period)
	e2 := emaSeries(e1, period)
	return finite(2*last(e1) - last(e2))
}

// TEMA = 3*EMA1 - 3*EMA2 + EMA3, нужно 3P значений.
func TEMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < 3*period {
		return 0
	}
	e1 := emaSeries(values, period)
	e2 := emaSeries(e1, period)
	e3 := emaSeries(e2, period)
	return finite(3*last(e1) - 3*last(e2) + last(e3))
}

func VWMA(closes, volumes []float64, period int) float64 {
	if period <= 0 || len(closes) < period {
		return 0
	}
	c, v := tail(closes, period), tail(volumes, period)
	var num, den float64
	for i := range c {
		num += c[i] * v[i]
		den += v[i]
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// ScaledMACD: MACD(12,26,9), периоды масштабируются на P/20.
// При P=20 получаем классические 12/26/9.
func ScaledMACD(values []float64, p int) models.MACD {
	fast := max(2, 12*p/maxPeriod)
	slow := max(fast+1, 26*p/maxPeriod)
	signal := max(2, 9*p/maxPeriod)
	return MACD(values, fast, slow, signal)
}

func MACD(values []float64, fast, slow, signal int) models.MACD {
	if len(values) < slow+signal-1 {
		return models.MACD{}
	}
	line := diffSeries(emaSeries(values, fast), emaSeries(values, slow))
	sig := emaSeries(line, signal)
	if len(sig) == 0 {
		return models.MACD{}
	}
	m := models.MACD{Value: last(line), Signal: last(sig)}
	m.Histogram = m.Value - m.Signal
	return m
}

// StochasticKD: %K по kPeriod, %D = SMA(dPeriod) от %K.
func StochasticKD(highs, lows, closes []float64, kPeriod, dPeriod int) models.Stochastic {
	n := len(closes)
	if n < kPeriod+dPeriod-1 {
		return models.Stochastic{}
	}
	ks := make([]float64, 0, dPeriod)
	for end := n - dPeriod + 1; end <= n; end++ {
		hh := maxOf(highs[end-kPeriod : end])
		ll := minOf(lows[end-kPeriod : end])
		k := 0.0
		if hh > ll {
			k = (closes[end-1] - ll) / (hh - ll) * 100
		}
		ks = append(ks, k)
	}
	return models.Stochastic{K: ks[len(ks)-1], D: mean(ks)}
}

func WilliamsR(highs, lows, closes []float64, period int) float64 {
	if len(closes) < period {
		return 0
	}
	return last(talib.WillR(highs, lows, closes, period))
}

func ROC(values []float64, period int) float64 {
	if len(values) <= period {
		return 0
	}
	return last(talib.Roc(values, period))
}

// Bollinger: SMA(P) ± k·σ (σ по генеральной совокупности).
func Bollinger(values []float64, period int, k float64) models.Bands {
	if period <= 0 || len(values) < period {
		return models.Bands{}
	}
	win := tail(values, period)
	mid := mean(win)
	sd := stddev(win)
	return models.Bands{Upper: mid + k*sd, Middle: mid, Lower: mid - k*sd}
}
