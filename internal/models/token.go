package models

import "time"

type Source string

const (
	SourceBoosted  Source = "boosted"
	SourceTrending Source = "trending"
)

// Horizons: значение по окнам 5m/1h/6h/24h.
type Horizons struct {
	M5  float64
	H1  float64
	H6  float64
	H24 float64
}

type TxnCount struct {
	Buys  int
	Sells int
}

func (t TxnCount) Total() int { return t.Buys + t.Sells }

type Txns struct {
	M5  TxnCount
	H1  TxnCount
	H6  TxnCount
	H24 TxnCount
}

// Available: есть ли вообще данные по транзакциям.
func (t Txns) Available() bool {
	return t.M5.Total()+t.H1.Total()+t.H6.Total()+t.H24.Total() > 0
}

type Score struct {
	Raw        float64
	Normalized float64
}

// PairDetail: детальные данные пула от маркет-провайдера.
type PairDetail struct {
	TokenAddress   string
	PoolAddress    string
	Symbol         string
	PriceUSD       float64
	PriceNative    float64
	PriceChange    Horizons
	Volume         Horizons
	Liquidity      float64
	MarketCap      float64
	Txns           Txns
	PairAgeSeconds int64
	IsBoosted      bool
}

type HolderPoint struct {
	Timestamp    time.Time
	TotalHolders int64
}

type SniperTrade struct {
	WalletAddress     string
	RealizedProfitUSD float64
}

// CandidateToken живёт один цикл discovery, если не стал позицией.
type CandidateToken struct {
	Address     string
	PoolAddress string
	Symbol      string
	Source      Source

	PriceUSD    float64
	PriceNative float64
	Volume      Horizons
	Liquidity   float64
	MarketCap   float64
	PriceChange Horizons
	Txns        Txns
	AgeDays     float64
	Boosted     bool

	HolderChangePct float64
	SniperCount     int
	SniperProfitUSD float64

	Candles    []Candle
	Indicators IndicatorSet
	Score      Score
	Uptrend    *Score
}

// ApplyDetail переносит рыночные данные пула в кандидата.
// Boosted-флаг только добавляется, но не снимается.
func (c *CandidateToken) ApplyDetail(d PairDetail) {
	if d.PoolAddress != "" {
		c.PoolAddress = d.PoolAddress
	}
	if d.Symbol != "" {
		c.Symbol = d.Symbol
	}
	c.PriceUSD = d.PriceUSD
	if d.PriceNative > 0 {
		c.PriceNative = d.PriceNative
	}
	c.PriceChange = d.PriceChange
	c.Volume = d.Volume
	c.Liquidity = d.Liquidity
	c.MarketCap = d.MarketCap
	c.Txns = d.Txns
	if d.PairAgeSeconds > 0 {
		c.AgeDays = float64(d.PairAgeSeconds) / 86400
	}
	c.Boosted = c.Boosted || d.IsBoosted
}
