package sessions

import (
	"context"
	"time"

	"dex_trader/internal/indicators"
	"dex_trader/internal/models"
	"dex_trader/internal/scoring"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const holderWindow = 24 * time.Hour

// MonitorTick: один проход правил выхода по открытой позиции.
func (l *Lifecycle) MonitorTick(ctx context.Context) (TickResult, error) {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	p := l.current()
	if p == nil {
		return TickResult{Action: models.ActionNone}, nil
	}

	price, ind, err := l.observe(ctx, p)
	if err != nil {
		return TickResult{Action: models.ActionNone, Position: p.Clone()}, errors.Wrapf(err, "observe %s", p.Symbol)
	}
	holders := l.holderChange(ctx, p)

	l.update(func(p *models.Position) { p.ObservePrice(price) })
	l.metrics.Profit(p.ProfitPct(price))

	dec := decideExit(p, price, ind, holders, l.cfg.Position)
	switch dec.Action {
	case models.ActionPartialSell:
		return l.sellTier(ctx, dec)
	case models.ActionFullSell:
		return l.sellAll(ctx, dec)
	}

	l.log.Debug("tick",
		zap.String("symbol", p.Symbol),
		zap.Float64("price", price),
		zap.Float64("profit_pct", p.ProfitPct(price)),
		zap.Float64("highest", p.HighestPrice),
		zap.Float64("atr", ind.ATR),
		zap.Float64("rsi", ind.RSI),
	)
	return TickResult{Action: models.ActionNone, Position: p.Clone()}, nil
}

// observe: цена из пула, индикаторы из свечей. Без цены пула берём close последней свечи.
func (l *Lifecycle) observe(ctx context.Context, p *models.Position) (float64, models.IndicatorSet, error) {
	pc := l.cfg.Position

	detail, derr := l.market.FetchPairDetail(ctx, p.PoolAddress)
	if derr != nil {
		l.log.Warn("pair detail failed", zap.String("pool", p.PoolAddress), zap.Error(derr))
	}

	candles, cerr := l.market.FetchOHLCV(ctx, p.PoolAddress, pc.OHLCVTimeframe, pc.OHLCVAggregate)
	if cerr != nil {
		l.log.Warn("ohlcv failed", zap.String("pool", p.PoolAddress), zap.Error(cerr))
	}
	ind := indicators.Compute(candles, models.FeaturesMonitor)

	var price float64
	if detail != nil {
		price = detail.PriceUSD
	}
	if price <= 0 {
		price = ind.Price
	}
	if price <= 0 {
		if derr == nil {
			derr = errors.New("pool not found")
		}
		return 0, ind, errors.Wrap(derr, "no price")
	}
	return price, ind, nil
}

// holderChange: nil, если правило выключено или данных нет.
func (l *Lifecycle) holderChange(ctx context.Context, p *models.Position) *float64 {
	if l.cfg.Position.Exit.HolderFloorPct >= 0 {
		return nil
	}
	to := l.now()
	from := to.Add(-l.cfg.Discovery.Validation.HolderLookback)
	pts, err := l.onchain.FetchHolderHistory(ctx, p.TokenAddress, from, to)
	if err != nil {
		l.log.Debug("holder history unavailable", zap.String("token", p.TokenAddress), zap.Error(err))
		return nil
	}
	v, ok := scoring.HolderChangePct(pts, holderWindow)
	if !ok {
		return nil
	}
	return &v
}
