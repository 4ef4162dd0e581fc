package service

import (
	"context"

	"dex_trader/internal/helper"
	"dex_trader/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// fetchSources: boosted и trending параллельно. Упавший источник даёт пустой список.
func (f *Funnel) fetchSources(ctx context.Context) (boosted, trending []models.CandidateToken) {
	span, ctx := f.startStage(ctx, "sources")
	defer span.Finish()

	var g errgroup.Group
	g.Go(func() error {
		boosted = f.fetchSource(ctx, models.SourceBoosted)
		return nil
	})
	g.Go(func() error {
		trending = f.fetchSource(ctx, models.SourceTrending)
		return nil
	})
	_ = g.Wait()

	f.metrics.Stage("boosted", len(boosted))
	f.metrics.Stage("trending", len(trending))
	return boosted, trending
}

func (f *Funnel) fetchSource(ctx context.Context, src models.Source) []models.CandidateToken {
	cs, err := f.market.FetchCandidateTokens(ctx, src)
	if err != nil {
		f.log.Warn("candidate source failed", zap.String("source", string(src)), zap.Error(err))
		return nil
	}
	for i := range cs {
		cs[i].Source = src
		if src == models.SourceBoosted {
			cs[i].Boosted = true
		}
	}
	return f.enrichMissing(ctx, cs)
}

// enrichMissing дотягивает рыночные данные тем, у кого их нет.
func (f *Funnel) enrichMissing(ctx context.Context, cs []models.CandidateToken) []models.CandidateToken {
	return f.each(ctx, cs, func(ctx context.Context, c *models.CandidateToken) bool {
		if c.PoolAddress == "" || (c.PriceUSD > 0 && c.Liquidity > 0) {
			return true
		}
		d, err := f.market.FetchPairDetail(ctx, c.PoolAddress)
		if err != nil {
			f.log.Debug("enrich failed", zap.String("pool", c.PoolAddress), zap.Error(err))
			return true
		}
		if d != nil {
			c.ApplyDetail(*d)
		}
		return true
	})
}

// filterAndMerge (шаги 2 и 3): валидация, фильтры источников, дедуп.
func (f *Funnel) filterAndMerge(boosted, trending []models.CandidateToken) []models.CandidateToken {
	dc := f.cfg.Discovery

	var okBoosted []models.CandidateToken
	for _, c := range boosted {
		if !f.admissible(c) {
			continue
		}
		if c.PriceChange.H24 > dc.Boosted.MinPriceChange24h &&
			c.Liquidity >= dc.Boosted.MinLiquidity &&
			c.Volume.H24 >= dc.Boosted.MinVolume24h {
			okBoosted = append(okBoosted, c)
		}
	}
	okBoosted = capTo(okBoosted, dc.BoostedCap)

	var okTrending []models.CandidateToken
	for _, c := range trending {
		if !f.admissible(c) {
			continue
		}
		if c.Liquidity > dc.Trending.MinLiquidity && c.Volume.H6 > dc.Trending.MinVolume6h {
			okTrending = append(okTrending, c)
		}
	}

	// boosted в приоритете
	seen := make(map[string]struct{}, len(okBoosted)+len(okTrending))
	out := make([]models.CandidateToken, 0, len(okBoosted)+len(okTrending))
	for _, list := range [][]models.CandidateToken{okBoosted, okTrending} {
		for _, c := range list {
			if _, dup := seen[c.Address]; dup {
				continue
			}
			seen[c.Address] = struct{}{}
			out = append(out, c)
		}
	}
	return capTo(out, dc.CombinedCap)
}

// admissible: адрес валиден и не в блеклисте.
func (f *Funnel) admissible(c models.CandidateToken) bool {
	if !helper.IsSolanaAddress(c.Address) {
		f.log.Debug("invalid token address", zap.String("address", c.Address))
		return false
	}
	if f.blacklist != nil && f.blacklist.IsBlacklisted(c.Address) {
		return false
	}
	return true
}
