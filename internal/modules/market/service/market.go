package service

import (
	"context"
	"fmt"
	"time"

	"dex_trader/internal/exchange"
	"dex_trader/internal/metrics"
	"dex_trader/internal/models"
	"dex_trader/internal/modules/config"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Market собирает провайдеров в контракты exchange.MarketData и exchange.OnChainData.
type Market struct {
	dex     *DexScreener
	gecko   *GeckoTerminal
	moralis *Moralis
	cache   *OHLCVCache
}

func NewMarket(cfg *config.Config, log *zap.Logger, m *metrics.Metrics) *Market {
	src := cfg.Sources
	return &Market{
		dex:     NewDexScreener(newSourceClient("dexscreener", src.DexScreener, log, m)),
		gecko:   NewGeckoTerminal(newSourceClient("geckoterminal", src.GeckoTerminal, log, m)),
		moralis: NewMoralis(newSourceClient("moralis", src.Moralis, log, m), src.Moralis.APIKey),
		cache:   NewOHLCVCache(src.OHLCVCacheTTL),
	}
}

func (m *Market) FetchCandidateTokens(ctx context.Context, source models.Source) ([]models.CandidateToken, error) {
	switch source {
	case models.SourceBoosted:
		return m.dex.BoostedTokens(ctx)
	case models.SourceTrending:
		return m.gecko.TrendingPools(ctx)
	default:
		return nil, errors.Errorf("unknown candidate source %q", source)
	}
}

func (m *Market) FetchPairDetail(ctx context.Context, pool string) (*models.PairDetail, error) {
	return m.dex.PairDetail(ctx, pool)
}

func (m *Market) FetchOHLCV(ctx context.Context, pool string, tf exchange.Timeframe, aggregate int) ([]models.Candle, error) {
	key := fmt.Sprintf("%s|%s|%d", pool, tf, aggregate)
	return m.cache.GetOrFetch(ctx, key, func(ctx context.Context) ([]models.Candle, error) {
		return m.gecko.OHLCV(ctx, pool, tf, aggregate)
	})
}

func (m *Market) FetchHolderHistory(ctx context.Context, token string, from, to time.Time) ([]models.HolderPoint, error) {
	return m.moralis.HolderHistory(ctx, token, from, to)
}

func (m *Market) FetchSniperActivity(ctx context.Context, pool string) ([]models.SniperTrade, error) {
	return m.moralis.SniperActivity(ctx, pool)
}
