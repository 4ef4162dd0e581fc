package service

import (
	"context"
	"time"

	"dex_trader/internal/models"
	"dex_trader/internal/scoring"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const holderWindow = 24 * time.Hour

// validationStage (шаг 6): холдеры и снайперы. Если не выжил никто,
// берём топ предыдущего шага с нейтральными on-chain значениями.
func (f *Funnel) validationStage(ctx context.Context, ranked []models.CandidateToken) []models.CandidateToken {
	dc := f.cfg.Discovery
	if !dc.Validation.Enabled {
		return capTo(ranked, dc.OutputCap)
	}

	validated := f.each(ctx, ranked, func(ctx context.Context, c *models.CandidateToken) bool {
		if err := f.validateOnChain(ctx, c); err != nil {
			f.log.Debug("on-chain validation failed", zap.String("token", c.Address), zap.Error(err))
			return false
		}
		c.Score = scoring.Score(*c, f.cfg.Scoring)
		return c.HolderChangePct > 0 && c.SniperCount < dc.Validation.MaxSnipers
	})
	if len(validated) > 0 {
		byScore(validated)
		return capTo(validated, dc.OutputCap)
	}
	if ctx.Err() != nil {
		return nil
	}

	fallback := make([]models.CandidateToken, 0, dc.FallbackCount)
	for _, c := range capTo(ranked, dc.FallbackCount) {
		c.HolderChangePct = 0
		c.SniperCount = 0
		c.SniperProfitUSD = 0
		completeIndicators(&c, f.cfg.Scoring)
		c.Score = scoring.Score(c, f.cfg.Scoring)
		fallback = append(fallback, c)
	}
	if len(fallback) > 0 {
		f.log.Info("on-chain validation left nothing, using fallback", zap.Int("candidates", len(fallback)))
	}
	byScore(fallback)
	return fallback
}

func (f *Funnel) validateOnChain(ctx context.Context, c *models.CandidateToken) error {
	to := f.now()
	from := to.Add(-f.cfg.Discovery.Validation.HolderLookback)
	pts, err := f.onchain.FetchHolderHistory(ctx, c.Address, from, to)
	if err != nil {
		return errors.Wrap(err, "holder history")
	}
	change, ok := scoring.HolderChangePct(pts, holderWindow)
	if !ok {
		return errors.New("not enough holder history")
	}

	trades, err := f.onchain.FetchSniperActivity(ctx, c.PoolAddress)
	if err != nil {
		return errors.Wrap(err, "sniper activity")
	}
	wallets := make(map[string]struct{}, len(trades))
	var profit float64
	for _, t := range trades {
		wallets[t.WalletAddress] = struct{}{}
		profit += t.RealizedProfitUSD
	}

	c.HolderChangePct = change
	c.SniperCount = len(wallets)
	c.SniperProfitUSD = profit
	return nil
}
