package indicators

import (
	"dex_trader/internal/models"

	talib "github.com/markcheno/go-talib"
)

func computeVolume(set *models.IndicatorSet, s series) {
	set.OBV = last(talib.Obv(s.closes, s.volumes))
	set.MFI = MFI(s.highs, s.lows, s.closes, s.volumes, 14)
	set.AD = last(talib.Ad(s.highs, s.lows, s.closes, s.volumes))
	set.CMF = CMF(s.highs, s.lows, s.closes, s.volumes, s.p)
	set.VPT = VPT(s.closes, s.volumes)
	set.VWAP = VWAP(s.highs, s.lows, s.closes, s.volumes)
}

func MFI(highs, lows, closes, volumes []float64, period int) float64 {
	if len(closes) <= period {
		return 0
	}
	return last(talib.Mfi(highs, lows, closes, volumes, period))
}

// moneyFlowMultiplier: ((c-l)-(h-c))/(h-l), 0 при h==l.
func moneyFlowMultiplier(high, low, close float64) float64 {
	if high == low {
		return 0
	}
	return ((close - low) - (high - close)) / (high - low)
}

// CMF: Σ money flow volume / Σ volume за period.
func CMF(highs, lows, closes, volumes []float64, period int) float64 {
	n := len(closes)
	if period <= 0 || n < period {
		return 0
	}
	var mfv, vol float64
	for i := n - period; i < n; i++ {
		mfv += moneyFlowMultiplier(highs[i], lows[i], closes[i]) * volumes[i]
		vol += volumes[i]
	}
	if vol == 0 {
		return 0
	}
	return mfv / vol
}

// VPT: накопленный Σ volume·Δclose/close(t-1).
func VPT(closes, volumes []float64) float64 {
	var vpt float64
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		vpt += volumes[i] * (closes[i] - closes[i-1]) / closes[i-1]
	}
	return vpt
}

// VWAP по типичной цене за весь ряд.
func VWAP(highs, lows, closes, volumes []float64) float64 {
	var num, den float64
	for i := range closes {
		tp := (highs[i] + lows[i] + closes[i]) / 3
		num += tp * volumes[i]
		den += volumes[i]
	}
	if den == 0 {
		return 0
	}
	return num / den
}
