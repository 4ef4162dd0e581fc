package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"dex_trader/internal/exchange"
	"dex_trader/internal/models"
	"dex_trader/internal/modules/config"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var mints = []string{
	"So11111111111111111111111111111111111111112",
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
	"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
	"mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So",
	"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
}

// uptrending: кандидат, который проходит фильтры, uptrend и пред-скор.
// bonus сдвигает динамику цены, чтобы различать кандидатов по скору.
func uptrending(addr string, bonus float64) models.CandidateToken {
	return models.CandidateToken{
		Address:     addr,
		PoolAddress: "pool-" + addr[:6],
		Symbol:      addr[:4],
		PriceUSD:    1.5,
		PriceNative: 0.01,
		Liquidity:   50_000,
		Volume:      models.Horizons{M5: 1_000, H1: 10_000, H6: 40_000, H24: 100_000},
		PriceChange: models.Horizons{M5: 5 + bonus, H1: 20, H6: 30, H24: 60},
		Txns: models.Txns{
			M5:  models.TxnCount{Buys: 30, Sells: 10},
			H1:  models.TxnCount{Buys: 200, Sells: 100},
			H24: models.TxnCount{Buys: 3000, Sells: 1500},
		},
	}
}

func hourlyCandles(n int) []models.Candle {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	for i := range out {
		c := 1 + 0.01*float64(i)
		out[i] = models.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c - 0.005, High: c * 1.01, Low: c * 0.99, Close: c, Volume: 1000 + float64(i),
		}
	}
	return out
}

type fakeMarket struct {
	boosted, trending       []models.CandidateToken
	boostedErr, trendingErr error
	candles                 []models.Candle

	mu          sync.Mutex
	detailCalls int
}

func (m *fakeMarket) FetchCandidateTokens(_ context.Context, src models.Source) ([]models.CandidateToken, error) {
	if src == models.SourceBoosted {
		return append([]models.CandidateToken(nil), m.boosted...), m.boostedErr
	}
	return append([]models.CandidateToken(nil), m.trending...), m.trendingErr
}

func (m *fakeMarket) FetchPairDetail(context.Context, string) (*models.PairDetail, error) {
	m.mu.Lock()
	m.detailCalls++
	m.mu.Unlock()
	return nil, nil
}

func (m *fakeMarket) FetchOHLCV(context.Context, string, exchange.Timeframe, int) ([]models.Candle, error) {
	return m.candles, nil
}

type fakeOnChain struct {
	holders map[string][]models.HolderPoint
	snipers map[string][]models.SniperTrade
	err     error
}

func (f *fakeOnChain) FetchHolderHistory(_ context.Context, token string, _, _ time.Time) ([]models.HolderPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.holders[token], nil
}

func (f *fakeOnChain) FetchSniperActivity(_ context.Context, pool string) ([]models.SniperTrade, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snipers[pool], nil
}

type blacklist map[string]bool

func (b blacklist) IsBlacklisted(a string) bool { return b[a] }

func newFunnel(market *fakeMarket, onchain *fakeOnChain, bl blacklist, mutate func(*config.Config)) *Funnel {
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	return NewFunnel(&cfg, zap.NewNop(), market, onchain, bl, nil)
}

func fiveCandidates() []models.CandidateToken {
	out := make([]models.CandidateToken, 0, 5)
	for i := 0; i < 5; i++ {
		out = append(out, uptrending(mints[i], float64(i)))
	}
	return out
}

func TestRunCycleFallsBackWhenHoldersFail(t *testing.T) {
	market := &fakeMarket{boosted: fiveCandidates(), candles: hourlyCandles(60)}
	f := newFunnel(market, &fakeOnChain{err: errors.New("moralis is down")}, nil, nil)

	out, err := f.RunCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, c := range out {
		assert.Zero(t, c.HolderChangePct)
		assert.Zero(t, c.SniperCount)
		assert.True(t, c.Indicators.Features.Has(models.FeaturesAll))
		if i > 0 {
			assert.GreaterOrEqual(t, out[i-1].Score.Normalized, c.Score.Normalized)
		}
	}
	assert.Equal(t, mints[4], out[0].Address, "strongest 5m move ranks first")
}

func TestRunCycleKeepsValidatedCandidates(t *testing.T) {
	now := time.Now()
	growing := []models.HolderPoint{
		{Timestamp: now.Add(-24 * time.Hour), TotalHolders: 1000},
		{Timestamp: now, TotalHolders: 1100},
	}
	shrinking := []models.HolderPoint{
		{Timestamp: now.Add(-24 * time.Hour), TotalHolders: 1000},
		{Timestamp: now, TotalHolders: 900},
	}
	cands := fiveCandidates()
	manySnipers := make([]models.SniperTrade, 0, 60)
	for i := 0; i < 60; i++ {
		manySnipers = append(manySnipers, models.SniperTrade{WalletAddress: string(rune('A' + i)), RealizedProfitUSD: 10})
	}

	onchain := &fakeOnChain{
		holders: map[string][]models.HolderPoint{
			mints[0]: growing,
			mints[1]: growing,
			mints[2]: shrinking,
			mints[3]: growing,
		},
		snipers: map[string][]models.SniperTrade{
			cands[0].PoolAddress: {{WalletAddress: "w1", RealizedProfitUSD: 5000}, {WalletAddress: "w1", RealizedProfitUSD: 1000}},
			cands[3].PoolAddress: manySnipers,
		},
	}
	market := &fakeMarket{boosted: cands, candles: hourlyCandles(60)}

	out, err := newFunnel(market, onchain, nil, nil).RunCycle(context.Background())
	require.NoError(t, err)

	got := map[string]models.CandidateToken{}
	for _, c := range out {
		got[c.Address] = c
	}
	require.Len(t, got, 2)
	require.Contains(t, got, mints[0])
	require.Contains(t, got, mints[1])

	c0 := got[mints[0]]
	assert.InDelta(t, 10.0, c0.HolderChangePct, 1e-9)
	assert.Equal(t, 1, c0.SniperCount, "distinct wallets")
	assert.Equal(t, 6000.0, c0.SniperProfitUSD)
}

func TestRunCycleValidationDisabled(t *testing.T) {
	cands := fiveCandidates()
	cands = append(cands, uptrending(mints[5], 10))
	market := &fakeMarket{boosted: cands, candles: hourlyCandles(60)}
	f := newFunnel(market, &fakeOnChain{err: errors.New("unused")}, nil, func(cfg *config.Config) {
		cfg.Discovery.Validation.Enabled = false
	})

	out, err := f.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 5)
}

func TestRunCycleDropsBlacklistedAndInvalid(t *testing.T) {
	cands := fiveCandidates()
	bad := uptrending(mints[5], 0)
	bad.Address = "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"
	cands = append(cands, bad)

	market := &fakeMarket{boosted: cands, candles: hourlyCandles(60)}
	f := newFunnel(market, &fakeOnChain{err: errors.New("down")}, blacklist{mints[4]: true, mints[3]: true}, func(cfg *config.Config) {
		cfg.Discovery.Validation.Enabled = false
	})

	out, err := f.RunCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, c := range out {
		assert.NotEqual(t, mints[4], c.Address)
		assert.NotEqual(t, mints[3], c.Address)
		assert.NotEqual(t, bad.Address, c.Address)
	}
}

func TestRunCycleSurvivesSourceFailure(t *testing.T) {
	market := &fakeMarket{
		boostedErr: errors.New("dexscreener 500"),
		trending:   fiveCandidates()[:2],
		candles:    hourlyCandles(60),
	}
	f := newFunnel(market, &fakeOnChain{err: errors.New("down")}, nil, nil)

	out, err := f.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 2)
	for _, c := range out {
		assert.Equal(t, models.SourceTrending, c.Source)
		assert.False(t, c.Boosted)
	}
}

func TestRunCycleCancelled(t *testing.T) {
	market := &fakeMarket{boosted: fiveCandidates(), candles: hourlyCandles(60)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newFunnel(market, &fakeOnChain{}, nil, nil).RunCycle(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFilterAndMerge(t *testing.T) {
	f := newFunnel(&fakeMarket{}, &fakeOnChain{}, nil, nil)

	boosted := uptrending(mints[0], 0)
	boosted.Boosted = true
	sameTrending := uptrending(mints[0], 0)
	sameTrending.Source = models.SourceTrending

	dumping := uptrending(mints[1], 0)
	dumping.PriceChange.H24 = -25

	thin := uptrending(mints[2], 0)
	thin.Liquidity = 4_000

	trendingOK := uptrending(mints[3], 0)
	trendingOK.Source = models.SourceTrending

	out := f.filterAndMerge(
		[]models.CandidateToken{boosted, dumping},
		[]models.CandidateToken{sameTrending, thin, trendingOK},
	)
	require.Len(t, out, 2)
	assert.Equal(t, mints[0], out[0].Address)
	assert.True(t, out[0].Boosted, "boosted copy wins the dedupe")
	assert.Equal(t, mints[3], out[1].Address)
}

func TestFilterAndMergeCaps(t *testing.T) {
	f := newFunnel(&fakeMarket{}, &fakeOnChain{}, nil, func(cfg *config.Config) {
		cfg.Discovery.BoostedCap = 2
		cfg.Discovery.CombinedCap = 3
	})
	var boosted, trending []models.CandidateToken
	for i := 0; i < 3; i++ {
		boosted = append(boosted, uptrending(mints[i], 0))
	}
	for i := 3; i < 6; i++ {
		trending = append(trending, uptrending(mints[i], 0))
	}
	out := f.filterAndMerge(boosted, trending)
	require.Len(t, out, 3)
	assert.Equal(t, []string{mints[0], mints[1], mints[3]}, []string{out[0].Address, out[1].Address, out[2].Address})
}
