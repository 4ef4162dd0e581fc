package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dex_trader/internal/exchange"
	"dex_trader/internal/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dexPairJSON = `{
  "chainId": "solana",
  "pairAddress": "POOL1",
  "baseToken": {"address": "MINT1", "symbol": "AAA"},
  "priceNative": "0.0001",
  "priceUsd": "0.015",
  "txns": {"m5": {"buys": 10, "sells": 2}, "h1": {"buys": 40, "sells": 20}, "h6": {"buys": 100, "sells": 90}, "h24": {"buys": 500, "sells": 250}},
  "volume": {"m5": 1000, "h1": 12000, "h6": 40000, "h24": 90000},
  "priceChange": {"m5": 1.5, "h1": 4.2, "h6": -3, "h24": 25},
  "liquidity": {"usd": 55000},
  "fdv": 900000,
  "pairCreatedAt": 1700000000000,
  "boosts": {"active": 2}
}`

func TestDexScreenerBoostedTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token-boosts/latest/v1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"chainId": "solana", "tokenAddress": "MINT1"},
			{"chainId": "ethereum", "tokenAddress": "0xabc"},
			{"chainId": "solana", "tokenAddress": "MINT1"}
		]`))
	})
	mux.HandleFunc("/tokens/v1/solana/MINT1", func(w http.ResponseWriter, r *http.Request) {
		low := `{"pairAddress": "POOL0", "baseToken": {"address": "MINT1"}, "liquidity": {"usd": 10}}`
		_, _ = w.Write([]byte("[" + low + "," + dexPairJSON + "]"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	d := NewDexScreener(testClient(t, srv.URL))
	d.now = func() time.Time { return time.UnixMilli(1700000000000).Add(48 * time.Hour) }

	got, err := d.BoostedTokens(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	c := got[0]
	assert.Equal(t, "MINT1", c.Address)
	assert.Equal(t, "POOL1", c.PoolAddress)
	assert.Equal(t, models.SourceBoosted, c.Source)
	assert.True(t, c.Boosted)
	assert.Equal(t, 0.015, c.PriceUSD)
	assert.Equal(t, 55000.0, c.Liquidity)
	assert.Equal(t, 900000.0, c.MarketCap)
	assert.Equal(t, models.TxnCount{Buys: 500, Sells: 250}, c.Txns.H24)
	assert.Equal(t, -3.0, c.PriceChange.H6)
	assert.InDelta(t, 2.0, c.AgeDays, 1e-9)
}

func TestDexScreenerPairDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/latest/dex/pairs/solana/POOL1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pairs": [` + dexPairJSON + `]}`))
	})
	mux.HandleFunc("/latest/dex/pairs/solana/EMPTY", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pairs": null}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	d := NewDexScreener(testClient(t, srv.URL))

	pd, err := d.PairDetail(context.Background(), "POOL1")
	require.NoError(t, err)
	require.NotNil(t, pd)
	assert.Equal(t, 0.0001, pd.PriceNative)
	assert.True(t, pd.IsBoosted)

	pd, err = d.PairDetail(context.Background(), "EMPTY")
	require.NoError(t, err)
	assert.Nil(t, pd)

	pd, err = d.PairDetail(context.Background(), "MISSING")
	require.NoError(t, err)
	assert.Nil(t, pd)
}

func TestGeckoTerminalTrendingAndOHLCV(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/networks/solana/trending_pools", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{
			"attributes": {
				"address": "POOL2", "name": "BBB / SOL",
				"base_token_price_usd": "0.5", "reserve_in_usd": "7000", "fdv_usd": "100000",
				"price_change_percentage": {"m5": "1", "h1": "2", "h6": "3", "h24": "4"},
				"volume_usd": {"m5": "10", "h1": "200", "h6": "1500", "h24": "3000"},
				"transactions": {"h1": {"buys": 7, "sells": 3}},
				"pool_created_at": "2024-01-01T00:00:00Z"
			},
			"relationships": {"base_token": {"data": {"id": "solana_MINT2"}}}
		}]}`))
	})
	mux.HandleFunc("/networks/solana/pools/POOL2/ohlcv/hour", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("aggregate"))
		_, _ = w.Write([]byte(`{"data": {"attributes": {"ohlcv_list": [
			[1700007200, 3, 3.5, 2.5, 3.2, 30],
			[1700003600, 2, 2.5, 1.5, 2.2, 20],
			[1700000000, 1, 1.5, 0.5, 1.2, 10]
		]}}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g := NewGeckoTerminal(testClient(t, srv.URL))
	g.now = func() time.Time { return time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC) }

	pools, err := g.TrendingPools(context.Background())
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, "MINT2", pools[0].Address)
	assert.Equal(t, "BBB", pools[0].Symbol)
	assert.Equal(t, 100000.0, pools[0].MarketCap)
	assert.Equal(t, 1500.0, pools[0].Volume.H6)
	assert.Equal(t, models.TxnCount{Buys: 7, Sells: 3}, pools[0].Txns.H1)
	assert.InDelta(t, 10, pools[0].AgeDays, 1e-9)

	candles, err := g.OHLCV(context.Background(), "POOL2", exchange.TimeframeHour, 1)
	require.NoError(t, err)
	require.Len(t, candles, 3)
	assert.Equal(t, 1.2, candles[0].Close)
	assert.Equal(t, 3.2, candles[2].Close)

	candles, err = g.OHLCV(context.Background(), "NOPE", exchange.TimeframeHour, 1)
	require.NoError(t, err)
	assert.NotNil(t, candles)
	assert.Empty(t, candles)
}

func TestMoralis(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token/mainnet/holders/MINT1/historical", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("X-API-Key"))
		_, _ = w.Write([]byte(`{"result": [
			{"timestamp": "2024-01-01T00:00:00Z", "totalHolders": 100},
			{"timestamp": "2024-01-02T00:00:00Z", "totalHolders": 120}
		]}`))
	})
	mux.HandleFunc("/token/mainnet/pairs/POOL1/snipers", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": [{"walletAddress": "W1", "realizedProfitUsd": 1500.5}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m := NewMoralis(testClient(t, srv.URL), "key")
	hist, err := m.HolderHistory(context.Background(), "MINT1", time.Now().Add(-48*time.Hour), time.Now())
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, int64(120), hist[1].TotalHolders)

	snipers, err := m.SniperActivity(context.Background(), "POOL1")
	require.NoError(t, err)
	require.Len(t, snipers, 1)
	assert.Equal(t, 1500.5, snipers[0].RealizedProfitUSD)

	disabled := NewMoralis(testClient(t, srv.URL), "")
	_, err = disabled.HolderHistory(context.Background(), "MINT1", time.Now(), time.Now())
	assert.True(t, errors.Is(err, exchange.ErrSourceDisabled))
}
