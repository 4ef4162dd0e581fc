package sessions

import (
	"context"
	"fmt"
	"strings"

	"dex_trader/internal/exchange"
	"dex_trader/internal/helper"
	"dex_trader/internal/models"
	"dex_trader/internal/modules/config"
	"dex_trader/internal/scoring"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// веса критериев для режима points, в сумме 100
const (
	weightScore    = 30
	weightMomentum = 15
	weightMACD     = 15
	weightRSI      = 10
	weightBreakout = 10
	weightRatio    = 10
	weightHolders  = 10
)

type criterion struct {
	name   string
	ok     bool
	weight float64
}

func criteria(c models.CandidateToken, a config.Admission) []criterion {
	ind := c.Indicators
	price := ind.Price
	if price == 0 {
		price = c.PriceUSD
	}
	breakout := (ind.Bollinger.Upper > 0 && price > ind.Bollinger.Upper) ||
		(ind.Keltner.Upper > 0 && price > ind.Keltner.Upper) ||
		ind.Ichimoku.AboveCloud(price)

	return []criterion{
		{"score", c.Score.Normalized > a.MinScore, weightScore},
		{"momentum", c.PriceChange.M5 > 0 && c.PriceChange.H1 > 0, weightMomentum},
		{"macd", ind.MACD.Bullish(), weightMACD},
		{"rsi", ind.RSI > 0 && ind.RSI < a.MaxRSI, weightRSI},
		{"breakout", breakout, weightBreakout},
		{"buy_sell", scoring.BuySellRatio(c.Txns.H24) >= a.MinBuySellRatio, weightRatio},
		{"holders", c.HolderChangePct >= a.MinHolderGrowth, weightHolders},
	}
}

// Eligible: проходит ли кандидат допуск. Возвращает набранные очки
// и названия проваленных критериев.
func Eligible(c models.CandidateToken, a config.Admission) (bool, float64, []string) {
	var points float64
	var failed []string
	for _, cr := range criteria(c, a) {
		if cr.ok {
			points += cr.weight
		} else {
			failed = append(failed, cr.name)
		}
	}
	if a.Mode == config.AdmissionPoints {
		return points >= a.MinPoints, points, failed
	}
	return len(failed) == 0, points, failed
}

// AdmitIfEligible покупает первого подходящего кандидата, если слот пуст.
// nil без ошибки: никто не прошёл или слот занят. Отказ свопа переходит
// к следующему кандидату, неподтверждённая покупка прерывает отбор.
func (l *Lifecycle) AdmitIfEligible(ctx context.Context, candidates []models.CandidateToken) (*models.Position, error) {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if l.current() != nil {
		return nil, nil
	}

	var buyErr error
	for _, c := range candidates {
		ok, points, failed := Eligible(c, l.cfg.Admission)
		if !ok {
			l.log.Debug("candidate rejected",
				zap.String("token", c.Address),
				zap.String("symbol", c.Symbol),
				zap.Float64("points", points),
				zap.Strings("failed", failed),
			)
			continue
		}

		pos, err := l.open(ctx, c)
		if err == nil {
			return pos.Clone(), nil
		}
		err = errors.Wrapf(err, "open %s", c.Symbol)
		if errors.Is(err, exchange.ErrUnconfirmed) || !errors.Is(err, exchange.ErrSwapFailed) {
			return nil, err
		}
		l.log.Warn("buy failed, trying next candidate", zap.String("token", c.Address), zap.Error(err))
		buyErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, buyErr
}

func (l *Lifecycle) open(ctx context.Context, c models.CandidateToken) (*models.Position, error) {
	pc := l.cfg.Position
	buySOL := decimal.NewFromFloat(pc.BuyAmountSOL)
	lamports := exchange.ToBaseUnits(buySOL, exchange.SOLDecimals)

	res, err := l.swapper.ExecuteSwap(ctx, exchange.SOLMint, c.Address, lamports, exchange.SwapOpts{SlippageBps: pc.SlippageBps})
	if err != nil {
		if errors.Is(err, exchange.ErrUnconfirmed) {
			l.notifier.Sendf("⚠️ [%s] покупка не подтверждена, проверьте кошелёк вручную: %v", c.Symbol, err)
		}
		return nil, errors.Wrap(err, "buy")
	}

	amount, decimals := l.filledAmount(ctx, c, res)
	if !amount.IsPositive() {
		l.notifier.Sendf("⚠️ [%s] купили (tx %s), но объём неизвестен, позиция не отслеживается", c.Symbol, res.Signature)
		return nil, errors.Errorf("unknown filled amount for %s", c.Address)
	}

	price := c.PriceUSD
	if price == 0 {
		price = c.Indicators.Price
	}

	pos := &models.Position{
		TokenAddress:    c.Address,
		PoolAddress:     c.PoolAddress,
		Symbol:          c.Symbol,
		EntryPrice:      price,
		EntryTime:       l.now(),
		HighestPrice:    price,
		LastPrice:       price,
		InitialAmount:   amount,
		AmountRemaining: amount,
		Decimals:        decimals,
		Tiers:           append([]models.Tier(nil), pc.Tiers...),
		Status:          models.StatusOpen,
	}
	for i := range pos.Tiers {
		pos.Tiers[i].Executed = false
	}
	l.setPosition(pos)
	l.metrics.Admitted()

	l.log.Info("position opened",
		zap.String("token", c.Address),
		zap.String("symbol", c.Symbol),
		zap.Float64("entry", price),
		zap.String("amount", amount.String()),
		zap.Float64("score", c.Score.Normalized),
		zap.String("tx", res.Signature),
	)
	l.notifier.Send(formatOpen(pos, c, res.Signature))
	return pos, nil
}

// filledAmount: фактический объём из кошелька, иначе оценка по цене в SOL.
func (l *Lifecycle) filledAmount(ctx context.Context, c models.CandidateToken, res exchange.SwapResult) (decimal.Decimal, int32) {
	bal, err := l.wallet.TokenBalance(ctx, c.Address)
	if err == nil && bal.Amount.IsPositive() {
		return bal.Amount, bal.Decimals
	}
	if err != nil {
		l.log.Warn("balance read after buy failed, estimating", zap.String("token", c.Address), zap.Error(err))
	}
	return estimateFill(l.cfg.Position, c.PriceNative), defaultTokenDecimals
}

// estimateFill = buy_sol / price_native * (1 - slippage).
func estimateFill(pc config.Position, priceNative float64) decimal.Decimal {
	if priceNative <= 0 {
		return decimal.Zero
	}
	slip := decimal.NewFromInt(int64(pc.SlippageBps)).Div(decimal.NewFromInt(10_000))
	return decimal.NewFromFloat(pc.BuyAmountSOL).
		Div(decimal.NewFromFloat(priceNative)).
		Mul(decimal.NewFromInt(1).Sub(slip))
}

func formatOpen(p *models.Position, c models.CandidateToken, sig string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ [%s] Вход %s @ %.8g\n", p.Symbol, helper.ShortAddr(p.TokenAddress), p.EntryPrice)
	fmt.Fprintf(&b, "amount=%s score=%.1f rsi=%.1f\n", p.InitialAmount.StringFixed(4), c.Score.Normalized, c.Indicators.RSI)
	fmt.Fprintf(&b, "tx=%s", sig)
	return b.String()
}
