package service

import (
	"context"

	"dex_trader/internal/indicators"
	"dex_trader/internal/models"
	"dex_trader/internal/scoring"

	"go.uber.org/zap"
)

// uptrendStage (шаг 4): свежие данные пула и uptrend под-скор.
func (f *Funnel) uptrendStage(ctx context.Context, in []models.CandidateToken) []models.CandidateToken {
	dc := f.cfg.Discovery
	out := f.each(ctx, in, func(ctx context.Context, c *models.CandidateToken) bool {
		if c.PoolAddress != "" {
			d, err := f.market.FetchPairDetail(ctx, c.PoolAddress)
			switch {
			case err != nil:
				f.log.Debug("pair detail failed, using source data", zap.String("pool", c.PoolAddress), zap.Error(err))
			case d != nil:
				c.ApplyDetail(*d)
			}
		}
		if c.PriceUSD <= 0 || c.PoolAddress == "" {
			return false
		}

		u := scoring.Uptrend(*c, f.cfg.Scoring)
		c.Uptrend = &u
		return scoring.QualityUptrend(*c, dc.Quality) || u.Normalized > dc.MinUptrendScore
	})
	byUptrend(out)
	return capTo(out, dc.UptrendCap)
}

// indicatorStage (шаг 5): дешёвые индикаторы и предварительный отсев,
// затем полный набор и финальный скор.
func (f *Funnel) indicatorStage(ctx context.Context, in []models.CandidateToken) []models.CandidateToken {
	dc := f.cfg.Discovery
	pre := f.each(ctx, in, func(ctx context.Context, c *models.CandidateToken) bool {
		candles, err := f.market.FetchOHLCV(ctx, c.PoolAddress, dc.OHLCVTimeframe, dc.OHLCVAggregate)
		if err != nil {
			f.log.Debug("ohlcv failed, neutral indicators", zap.String("pool", c.PoolAddress), zap.Error(err))
		}
		c.Candles = candles
		c.Indicators = indicators.Compute(candles, models.FeaturesCheap)
		c.Score = scoring.Score(*c, f.cfg.Scoring)
		return c.Score.Normalized > dc.MinPreScore
	})

	for i := range pre {
		completeIndicators(&pre[i], f.cfg.Scoring)
	}
	byScore(pre)
	return capTo(pre, dc.IndicatorCap)
}

// completeIndicators досчитывает advanced тир, если его ещё нет.
func completeIndicators(c *models.CandidateToken, cfg scoring.Config) {
	if c.Indicators.Features.Has(models.FeaturesAll) {
		return
	}
	c.Indicators = indicators.Compute(c.Candles, models.FeaturesAll)
	c.Score = scoring.Score(*c, cfg)
}
