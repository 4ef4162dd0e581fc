package models

// Features: набор тиров индикаторов, которые нужно посчитать.
type Features uint8

const (
	FeatureBasic Features = 1 << iota
	FeatureIntermediate
	FeatureAdvanced
	FeatureVolume

	// FeaturesCheap: всё кроме advanced (предварительный скоринг в discovery).
	FeaturesCheap = FeatureBasic | FeatureIntermediate | FeatureVolume
	// FeaturesMonitor: то что нужно на тике позиции.
	FeaturesMonitor = FeatureBasic | FeatureIntermediate
	FeaturesAll     = FeatureBasic | FeatureIntermediate | FeatureAdvanced | FeatureVolume
)

func (f Features) Has(x Features) bool { return f&x == x }

type MACD struct {
	Value     float64
	Signal    float64
	Histogram float64
}

// Bullish: линия выше сигнальной и гистограмма положительная.
func (m MACD) Bullish() bool { return m.Value > m.Signal && m.Histogram > 0 }

type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

type Stochastic struct {
	K float64
	D float64
}

type Vortex struct {
	Plus  float64
	Minus float64
}

type Ichimoku struct {
	Tenkan float64
	Kijun  float64
	SpanA  float64
	SpanB  float64
	Chikou float64
}

// AboveCloud: цена выше обоих span.
func (i Ichimoku) AboveCloud(price float64) bool {
	if i.SpanA == 0 && i.SpanB == 0 {
		return false
	}
	return price > i.SpanA && price > i.SpanB
}

// IndicatorSet: снапшот последних значений индикаторов.
// Не посчитанный (мало свечей) индикатор остаётся нулевым значением своего типа.
type IndicatorSet struct {
	Features Features
	Candles  int
	Price    float64

	// basic
	SMA       float64
	EMA       float64
	TRIMA     float64
	RSI       float64
	ATR       float64
	TrueRange float64

	// intermediate
	DEMA       float64
	TEMA       float64
	VWMA       float64
	MACD       MACD
	Stochastic Stochastic
	WilliamsR  float64
	ROC        float64
	Bollinger  Bands

	// advanced
	PSAR     float64
	Vortex   Vortex
	CCI      float64
	PPO      MACD
	AO       float64
	Keltner  Bands
	Ichimoku Ichimoku

	// volume
	OBV  float64
	MFI  float64
	AD   float64
	CMF  float64
	VPT  float64
	VWAP float64
}
