package indicators

import (
	"math"

	"dex_trader/internal/models"

	talib "github.com/markcheno/go-talib"
)

func computeBasic(set *models.IndicatorSet, s series) {
	set.SMA = SMA(s.closes, s.p)
	set.EMA = EMA(s.closes, s.p)
	set.TRIMA = TRIMA(s.closes, s.p)
	set.RSI = RSI(s.closes, min(14, s.p))
	set.ATR = ATR(s.highs, s.lows, s.closes, min(14, s.p))
	set.TrueRange = lastTrueRange(s)
}

// SMA: простое среднее последних period значений.
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}
	if period == 1 {
		return values[len(values)-1]
	}
	return last(talib.Sma(values, period))
}

func EMA(values []float64, period int) float64 {
	return last(emaSeries(values, period))
}

// TRIMA: взвешенное среднее с треугольным профилем весов:
// w(i) = i+1 для i < ceil((P+1)/2), иначе P-i.
func TRIMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}
	win := tail(values, period)
	half := int(math.Ceil(float64(period+1) / 2))
	var num, den float64
	for i, v := range win {
		w := float64(period - i)
		if i < half {
			w = float64(i + 1)
		}
		num += w * v
		den += w
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// RSI по Уайлдеру, нужно period+1 значений.
func RSI(values []float64, period int) float64 {
	if period <= 0 || len(values) <= period {
		return 0
	}
	return last(talib.Rsi(values, period))
}

// ATR по Уайлдеру, нужно period+1 свечей.
func ATR(highs, lows, closes []float64, period int) float64 {
	if period <= 0 || len(closes) <= period {
		return 0
	}
	return last(talib.Atr(highs, lows, closes, period))
}

func lastTrueRange(s series) float64 {
	i := s.n - 1
	if i == 0 {
		return s.highs[0] - s.lows[0]
	}
	return trueRange(s.highs[i], s.lows[i], s.closes[i-1])
}
