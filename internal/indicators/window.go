package indicators

import "math"

func last(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return finite(xs[len(xs)-1])
}

// finite гасит NaN/Inf до нуля, наружу они не уходят.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func tail(xs []float64, n int) []float64 {
	if n >= len(xs) {
		return xs
	}
	return xs[len(xs)-n:]
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var s float64
	for _, x := range xs {
		d := x - m
		s += d * d
	}
	return math.Sqrt(s / float64(len(xs)))
}

func maxOf(xs []float64) float64 {
	m := math.Inf(-1)
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}

func minOf(xs []float64) float64 {
	m := math.Inf(1)
	for _, x := range xs {
		if x < m {
			m = x
		}
	}
	return m
}

// midRange: (max high + min low)/2 по последним n свечам.
func midRange(highs, lows []float64, n int) float64 {
	return (maxOf(tail(highs, n)) + minOf(tail(lows, n))) / 2
}

func trueRange(high, low, prevClose float64) float64 {
	return math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
}

// diffSeries: a[i] - b[i] с выравниванием по правому краю.
func diffSeries(a, b []float64) []float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]float64, n)
	ao, bo := len(a)-n, len(b)-n
	for i := 0; i < n; i++ {
		out[i] = a[ao+i] - b[bo+i]
	}
	return out
}
