package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"dex_trader/internal/exchange"
	"dex_trader/internal/models"

	"github.com/tidwall/gjson"
)

const ohlcvLimit = 200

type GeckoTerminal struct {
	c   *sourceClient
	now func() time.Time
}

func NewGeckoTerminal(c *sourceClient) *GeckoTerminal {
	return &GeckoTerminal{c: c, now: time.Now}
}

// TrendingPools: trending пулы сети Solana.
func (g *GeckoTerminal) TrendingPools(ctx context.Context) ([]models.CandidateToken, error) {
	body, err := g.c.get(ctx, "/networks/solana/trending_pools", url.Values{"page": {"1"}})
	if err != nil {
		return nil, err
	}
	now := g.now()
	var out []models.CandidateToken
	gjson.GetBytes(body, "data").ForEach(func(_, item gjson.Result) bool {
		c := parseGeckoPool(item, now)
		if c.Address != "" && c.PoolAddress != "" {
			out = append(out, c)
		}
		return true
	})
	return out, nil
}

// OHLCV: свечи пула по возрастанию времени; нет данных, значит пустой слайс.
func (g *GeckoTerminal) OHLCV(ctx context.Context, pool string, tf exchange.Timeframe, aggregate int) ([]models.Candle, error) {
	if aggregate <= 0 {
		aggregate = 1
	}
	q := url.Values{
		"aggregate": {strconv.Itoa(aggregate)},
		"limit":     {strconv.Itoa(ohlcvLimit)},
		"currency":  {"usd"},
	}
	body, err := g.c.get(ctx, fmt.Sprintf("/networks/solana/pools/%s/ohlcv/%s", pool, tf), q)
	if err != nil {
		if isNotFound(err) {
			return []models.Candle{}, nil
		}
		return nil, err
	}
	out := parseOHLCVList(gjson.GetBytes(body, "data.attributes.ohlcv_list"))
	if out == nil {
		out = []models.Candle{}
	}
	return out, nil
}
