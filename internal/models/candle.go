package models

import (
	"sort"
	"time"
)

// Candle: одна OHLCV свеча.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// NormalizeCandles сортирует по времени и выкидывает дубликаты timestamp.
// Для дубликата остаётся последняя встреченная свеча.
func NormalizeCandles(in []Candle) []Candle {
	if len(in) == 0 {
		return nil
	}
	out := make([]Candle, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })

	res := out[:0]
	for _, c := range out {
		if n := len(res); n > 0 && res[n-1].Timestamp.Equal(c.Timestamp) {
			res[n-1] = c
			continue
		}
		res = append(res, c)
	}
	return res
}

func Closes(cs []Candle) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Close
	}
	return out
}

func Highs(cs []Candle) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.High
	}
	return out
}

func Lows(cs []Candle) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Low
	}
	return out
}

func Volumes(cs []Candle) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Volume
	}
	return out
}
