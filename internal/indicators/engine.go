// Package indicators считает снапшот технических индикаторов по OHLCV ряду.
//
// Каждый индикатор имеет минимальное число свечей. Если свечей меньше,
// поле остаётся нулевым (нейтральным), ошибок и паник нет.
package indicators

import "dex_trader/internal/models"

const (
	maxPeriod = 20

	minIntermediate = 14
	minAdvanced     = 26
	minIchimoku     = 52
)

// Compute считает запрошенные тиры индикаторов по свечам.
func Compute(candles []models.Candle, features models.Features) models.IndicatorSet {
	set := models.IndicatorSet{Features: features, Candles: len(candles)}
	n := len(candles)
	if n == 0 {
		return set
	}

	s := newSeries(candles)
	set.Price = s.closes[n-1]

	if features.Has(models.FeatureBasic) {
		computeBasic(&set, s)
	}
	if features.Has(models.FeatureIntermediate) && n >= minIntermediate {
		computeIntermediate(&set, s)
	}
	if features.Has(models.FeatureAdvanced) && n >= minAdvanced {
		computeAdvanced(&set, s)
	}
	if features.Has(models.FeatureVolume) {
		computeVolume(&set, s)
	}
	return set
}

// Period: рабочий период P = min(20, N).
func Period(n int) int {
	if n < maxPeriod {
		return n
	}
	return maxPeriod
}

type series struct {
	n       int
	p       int
	highs   []float64
	lows    []float64
	closes  []float64
	volumes []float64
}

func newSeries(cs []models.Candle) series {
	return series{
		n:       len(cs),
		p:       Period(len(cs)),
		highs:   models.Highs(cs),
		lows:    models.Lows(cs),
		closes:  models.Closes(cs),
		volumes: models.Volumes(cs),
	}
}
