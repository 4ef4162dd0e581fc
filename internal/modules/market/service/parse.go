package service

import (
	"strings"
	"time"

	"dex_trader/internal/models"

	"github.com/tidwall/gjson"
)

var horizonKeys = [4]string{"m5", "h1", "h6", "h24"}

func parseHorizons(r gjson.Result) models.Horizons {
	return models.Horizons{
		M5:  r.Get(horizonKeys[0]).Float(),
		H1:  r.Get(horizonKeys[1]).Float(),
		H6:  r.Get(horizonKeys[2]).Float(),
		H24: r.Get(horizonKeys[3]).Float(),
	}
}

func parseTxnCount(r gjson.Result) models.TxnCount {
	return models.TxnCount{
		Buys:  int(r.Get("buys").Int()),
		Sells: int(r.Get("sells").Int()),
	}
}

func parseTxns(r gjson.Result) models.Txns {
	return models.Txns{
		M5:  parseTxnCount(r.Get(horizonKeys[0])),
		H1:  parseTxnCount(r.Get(horizonKeys[1])),
		H6:  parseTxnCount(r.Get(horizonKeys[2])),
		H24: parseTxnCount(r.Get(horizonKeys[3])),
	}
}

// parseDexPair: пара DexScreener в PairDetail.
func parseDexPair(p gjson.Result, now time.Time) models.PairDetail {
	d := models.PairDetail{
		TokenAddress: p.Get("baseToken.address").String(),
		PoolAddress:  p.Get("pairAddress").String(),
		Symbol:       p.Get("baseToken.symbol").String(),
		PriceUSD:     p.Get("priceUsd").Float(),
		PriceNative:  p.Get("priceNative").Float(),
		PriceChange:  parseHorizons(p.Get("priceChange")),
		Volume:       parseHorizons(p.Get("volume")),
		Liquidity:    p.Get("liquidity.usd").Float(),
		MarketCap:    p.Get("marketCap").Float(),
		Txns:         parseTxns(p.Get("txns")),
		IsBoosted:    p.Get("boosts.active").Int() > 0,
	}
	if d.MarketCap == 0 {
		d.MarketCap = p.Get("fdv").Float()
	}
	if created := p.Get("pairCreatedAt").Int(); created > 0 {
		d.PairAgeSeconds = int64(now.Sub(time.UnixMilli(created)).Seconds())
	}
	return d
}

// geckoTokenAddress: "solana_<mint>" -> "<mint>".
func geckoTokenAddress(id string) string {
	if i := strings.IndexByte(id, '_'); i >= 0 {
		return id[i+1:]
	}
	return id
}

// parseGeckoPool: trending пул GeckoTerminal в кандидата.
func parseGeckoPool(item gjson.Result, now time.Time) models.CandidateToken {
	attr := item.Get("attributes")
	symbol := attr.Get("name").String()
	if i := strings.Index(symbol, " / "); i > 0 {
		symbol = symbol[:i]
	}

	c := models.CandidateToken{
		Address:     geckoTokenAddress(item.Get("relationships.base_token.data.id").String()),
		PoolAddress: attr.Get("address").String(),
		Symbol:      symbol,
		Source:      models.SourceTrending,
		PriceUSD:    attr.Get("base_token_price_usd").Float(),
		PriceNative: attr.Get("base_token_price_native_currency").Float(),
		Liquidity:   attr.Get("reserve_in_usd").Float(),
		MarketCap:   attr.Get("market_cap_usd").Float(),
		PriceChange: parseHorizons(attr.Get("price_change_percentage")),
		Volume:      parseHorizons(attr.Get("volume_usd")),
		Txns:        parseTxns(attr.Get("transactions")),
	}
	if c.MarketCap == 0 {
		c.MarketCap = attr.Get("fdv_usd").Float()
	}
	if created, err := time.Parse(time.RFC3339, attr.Get("pool_created_at").String()); err == nil {
		c.AgeDays = now.Sub(created).Hours() / 24
	}
	return c
}

// parseOHLCVList: [[ts,o,h,l,c,v], ...] в свечи по возрастанию времени.
func parseOHLCVList(list gjson.Result) []models.Candle {
	var out []models.Candle
	list.ForEach(func(_, row gjson.Result) bool {
		v := row.Array()
		if len(v) < 6 {
			return true
		}
		out = append(out, models.Candle{
			Timestamp: time.Unix(v[0].Int(), 0).UTC(),
			Open:      v[1].Float(),
			High:      v[2].Float(),
			Low:       v[3].Float(),
			Close:     v[4].Float(),
			Volume:    v[5].Float(),
		})
		return true
	})
	return models.NormalizeCandles(out)
}
