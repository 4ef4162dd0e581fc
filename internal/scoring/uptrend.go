package scoring

import (
	"math"

	"dex_trader/internal/models"
)

type QualityConfig struct {
	MinVolume1h  float64 `yaml:"min_volume_1h"`
	MinVolume24h float64 `yaml:"min_volume_24h"`
}

// Uptrend: под-скор для быстрого отсева в discovery (потолок cfg.UptrendMax).
func Uptrend(t models.CandidateToken, cfg Config) models.Score {
	pc := t.PriceChange
	raw := math.Min(25, 0.35*pc.M5+0.3*pc.H1+0.2*pc.H6+0.15*pc.H24)

	r5, r1 := BuySellRatio(t.Txns.M5), BuySellRatio(t.Txns.H1)
	switch {
	case r5 > 1.5:
		raw += 10
	case r5 > 1:
		raw += 5
	}
	if r1 > 1.2 {
		raw += 5
	}
	if VolumeSpike(t.Volume) {
		raw += 10
	}
	if VolumeAcceleration(t.Volume) > 0.5 {
		raw += 10
	}
	if pc.M5 < 0 {
		raw -= 10
	}
	return models.Score{Raw: raw, Normalized: Normalize(raw, cfg.UptrendMax)}
}

// QualityUptrend: правило "качественного" аптренда, рост на 5m и на 1h или 6h,
// перевес покупок и минимальные объёмы.
func QualityUptrend(t models.CandidateToken, q QualityConfig) bool {
	pc := t.PriceChange
	if pc.M5 <= 0 || (pc.H1 <= 0 && pc.H6 <= 0) {
		return false
	}
	if BuySellRatio(t.Txns.M5) <= 1 && BuySellRatio(t.Txns.H1) <= 1.2 {
		return false
	}
	return t.Volume.H1 >= q.MinVolume1h && t.Volume.H24 >= q.MinVolume24h
}
