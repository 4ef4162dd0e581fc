package service

import (
	"context"
	"sort"
	"time"

	"dex_trader/internal/exchange"
	"dex_trader/internal/metrics"
	"dex_trader/internal/models"
	"dex_trader/internal/modules/config"
	"dex_trader/pkg/tracing"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Funnel это воронка отбора кандидатов. Этапы: источники → фильтры → uptrend →
// индикаторы и скор → on-chain валидация.
type Funnel struct {
	cfg       *config.Config
	log       *zap.Logger
	market    exchange.MarketData
	onchain   exchange.OnChainData
	blacklist exchange.Blacklist
	metrics   *metrics.Metrics

	now func() time.Time
}

func NewFunnel(
	cfg *config.Config,
	log *zap.Logger,
	market exchange.MarketData,
	onchain exchange.OnChainData,
	blacklist exchange.Blacklist,
	m *metrics.Metrics,
) *Funnel {
	return &Funnel{
		cfg:       cfg,
		log:       log.Named("discovery"),
		market:    market,
		onchain:   onchain,
		blacklist: blacklist,
		metrics:   m,
		now:       time.Now,
	}
}

// RunCycle: один полный проход воронки. Ошибка только при отмене ctx,
// сбои отдельных источников и кандидатов логируются и не роняют цикл.
func (f *Funnel) RunCycle(ctx context.Context) ([]models.CandidateToken, error) {
	span, ctx := tracing.StartSpan(ctx, "discovery.cycle")
	defer span.Finish()
	start := time.Now()

	boosted, trending := f.fetchSources(ctx)

	combined := f.stage(ctx, "filter", func(context.Context) []models.CandidateToken {
		return f.filterAndMerge(boosted, trending)
	})
	uptrend := f.stage(ctx, "uptrend", func(ctx context.Context) []models.CandidateToken {
		return f.uptrendStage(ctx, combined)
	})
	ranked := f.stage(ctx, "indicators", func(ctx context.Context) []models.CandidateToken {
		return f.indicatorStage(ctx, uptrend)
	})
	out := f.stage(ctx, "validation", func(ctx context.Context) []models.CandidateToken {
		return f.validationStage(ctx, ranked)
	})

	if err := ctx.Err(); err != nil {
		f.metrics.CycleDone("cancelled", time.Since(start).Seconds())
		return nil, err
	}

	f.metrics.CycleDone("ok", time.Since(start).Seconds())
	span.SetTag("output", len(out))
	f.log.Info("discovery cycle done",
		zap.Int("boosted", len(boosted)),
		zap.Int("trending", len(trending)),
		zap.Int("combined", len(combined)),
		zap.Int("uptrend", len(uptrend)),
		zap.Int("ranked", len(ranked)),
		zap.Int("output", len(out)),
		zap.Duration("took", time.Since(start)),
	)
	return out, nil
}

// stage оборачивает шаг в спан и пишет число выживших в метрику.
func (f *Funnel) stage(ctx context.Context, name string, fn func(ctx context.Context) []models.CandidateToken) []models.CandidateToken {
	span, sctx := f.startStage(ctx, name)
	defer span.Finish()

	out := fn(sctx)
	span.SetTag("candidates", len(out))
	f.metrics.Stage(name, len(out))
	f.log.Debug("stage done", zap.String("stage", name), zap.Int("candidates", len(out)))
	return out
}

func (f *Funnel) startStage(ctx context.Context, name string) (opentracing.Span, context.Context) {
	return tracing.StartSpan(ctx, "discovery."+name)
}

// each гоняет fn по кандидатам с ограничением параллелизма.
// Порядок сохраняется, остаются те, для кого fn вернул true.
func (f *Funnel) each(ctx context.Context, in []models.CandidateToken, fn func(ctx context.Context, c *models.CandidateToken) bool) []models.CandidateToken {
	items := append([]models.CandidateToken(nil), in...)
	keep := make([]bool, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, f.cfg.Discovery.Concurrency))
	for i := range items {
		i := i
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			keep[i] = fn(gctx, &items[i])
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.CandidateToken, 0, len(items))
	for i, c := range items {
		if keep[i] {
			out = append(out, c)
		}
	}
	return out
}

func byScore(cs []models.CandidateToken) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].Score.Normalized > cs[j].Score.Normalized })
}

func byUptrend(cs []models.CandidateToken) {
	sort.SliceStable(cs, func(i, j int) bool { return uptrendOf(cs[i]) > uptrendOf(cs[j]) })
}

func uptrendOf(c models.CandidateToken) float64 {
	if c.Uptrend == nil {
		return 0
	}
	return c.Uptrend.Normalized
}

func capTo(cs []models.CandidateToken, n int) []models.CandidateToken {
	if n > 0 && len(cs) > n {
		return cs[:n]
	}
	return cs
}
