// Package scoring сводит индикаторы, динамику цены, транзакции и on-chain
// сигналы в один нормированный скор 0–100.
package scoring

import (
	"math"

	"dex_trader/internal/models"
)

type Config struct {
	// MaxScore: теоретический потолок raw-скора, на него нормируем.
	MaxScore float64 `yaml:"max_score"`
	// UptrendMax: потолок uptrend под-скора.
	UptrendMax float64 `yaml:"uptrend_max"`
	// UptrendWeight: доля нормированного uptrend скора в итоговом.
	UptrendWeight float64 `yaml:"uptrend_weight"`
}

func DefaultConfig() Config {
	return Config{
		MaxScore:      200,
		UptrendMax:    60,
		UptrendWeight: 0.2,
	}
}

// Contribution: вклад одного сигнала в raw скор.
type Contribution struct {
	Name   string
	Points float64
}

// Score считает итоговый скор кандидата.
func Score(t models.CandidateToken, cfg Config) models.Score {
	s, _ := Explain(t, cfg)
	return s
}

// Explain: то же что Score, плюс разбивка по вкладам (для логов).
func Explain(t models.CandidateToken, cfg Config) (models.Score, []Contribution) {
	var parts []Contribution
	add := func(name string, pts float64) {
		if pts != 0 {
			parts = append(parts, Contribution{Name: name, Points: pts})
		}
	}

	ind := t.Indicators
	price := ind.Price
	if price == 0 {
		price = t.PriceUSD
	}

	// технические сигналы
	if ind.MACD.Bullish() {
		add("macd_bullish", 10)
	}
	if ind.PSAR > 0 && price > ind.PSAR {
		add("above_psar", 5)
	}
	if ind.RSI > 0 && ind.RSI < 30 {
		add("rsi_oversold", 5)
	}
	if ind.Stochastic.K > ind.Stochastic.D && ind.Stochastic.K < 80 {
		add("stoch_cross", 5)
	}
	if ind.AO > 0 {
		add("ao_positive", 5)
	}
	if ind.Bollinger.Upper > 0 && price > ind.Bollinger.Upper {
		add("bollinger_breakout", 5)
	}
	if ind.Keltner.Upper > 0 && price > ind.Keltner.Upper {
		add("keltner_breakout", 5)
	}
	if ind.CMF > 0 {
		add("cmf_positive", 3)
	}
	if ind.MFI > 0 && ind.MFI < 20 {
		add("mfi_oversold", 3)
	}

	// давление покупателей
	if t.Txns.Available() {
		if BuySellRatio(t.Txns.H24) > 1.5 {
			add("buy_sell_24h", 15)
		}
		if BuySellRatio(t.Txns.M5) > 1 {
			add("buy_sell_5m", 10)
		}
		f5, f1 := BuyFraction(t.Txns.M5), BuyFraction(t.Txns.H1)
		if f5 > 0.6 && f5 > f1 {
			add("buy_pressure_rising", 15)
		}
	}

	// объёмы
	if t.Volume.H1 > 0 && t.Volume.H24 > 0 {
		if VolumeSpike(t.Volume) {
			add("volume_spike", 10)
		}
		if VolumeAcceleration(t.Volume) > 0.5 {
			add("volume_acceleration", 15)
		}
	}

	if t.Uptrend != nil {
		add("uptrend", cfg.UptrendWeight*t.Uptrend.Normalized)
	}

	ich := ind.Ichimoku
	if ich.SpanA != 0 || ich.SpanB != 0 {
		if ich.AboveCloud(price) {
			add("ichimoku_above_cloud", 10)
		}
		if ich.Tenkan > ich.Kijun {
			add("ichimoku_tk_cross", 5)
		}
		if ich.Chikou > price {
			add("ichimoku_chikou", 5)
		}
	}

	pc := t.PriceChange
	add("price_change", 0.3*pc.M5+0.3*pc.H1+0.2*pc.H6+0.2*pc.H24)
	if pc.M5 < 0 {
		add("negative_5m", -10)
	}
	if t.Boosted {
		add("boosted", 10)
	}

	add("holder_growth", t.HolderChangePct*0.5)
	if t.SniperProfitUSD != 0 {
		add("sniper_profit", math.Min(20, t.SniperProfitUSD/1000))
	}
	if t.Liquidity > 0 {
		add("volume_liquidity", math.Min(10, t.Volume.H24/t.Liquidity*2))
	}

	var raw float64
	for _, p := range parts {
		raw += p.Points
	}
	return models.Score{Raw: raw, Normalized: Normalize(raw, cfg.MaxScore)}, parts
}

// Normalize: clamp(raw/max*100, 0, 100).
func Normalize(raw, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	v := raw / maxScore * 100
	return math.Max(0, math.Min(100, v))
}

// BuySellRatio без деления на ноль: при нуле продаж отношение равно числу покупок.
func BuySellRatio(c models.TxnCount) float64 {
	if c.Sells == 0 {
		return float64(c.Buys)
	}
	return float64(c.Buys) / float64(c.Sells)
}

// BuyFraction: доля покупок среди всех транзакций окна.
func BuyFraction(c models.TxnCount) float64 {
	if c.Total() == 0 {
		return 0
	}
	return float64(c.Buys) / float64(c.Total())
}

// VolumeSpike: часовой объём больше двух средних часов за сутки.
func VolumeSpike(v models.Horizons) bool {
	return v.H24 > 0 && v.H1 > 2*(v.H24/24)
}

// VolumeAcceleration сравнивает поминутный темп объёма 5m/1h/6h.
// 0: темп ровный, >0: ускоряется.
func VolumeAcceleration(v models.Horizons) float64 {
	rate5m, rate1h, rate6h := v.M5/5, v.H1/60, v.H6/360
	var acc float64
	if rate1h > 0 {
		acc += (rate5m/rate1h - 1) / 2
	}
	if rate6h > 0 {
		acc += (rate1h/rate6h - 1) / 2
	}
	return acc
}
