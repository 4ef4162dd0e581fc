package sessions

import (
	"context"
	"sync"
	"time"

	"dex_trader/internal/exchange"
	"dex_trader/internal/models"
	"dex_trader/internal/modules/config"
	"dex_trader/internal/notify"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeMarket struct {
	mu      sync.Mutex
	price   float64
	candles []models.Candle
}

func (f *fakeMarket) set(price float64, candles []models.Candle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.price, f.candles = price, candles
}

func (f *fakeMarket) FetchCandidateTokens(context.Context, models.Source) ([]models.CandidateToken, error) {
	return nil, nil
}

func (f *fakeMarket) FetchPairDetail(_ context.Context, pool string) (*models.PairDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.price == 0 {
		return nil, nil
	}
	return &models.PairDetail{PoolAddress: pool, PriceUSD: f.price}, nil
}

func (f *fakeMarket) FetchOHLCV(context.Context, string, exchange.Timeframe, int) ([]models.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.candles, nil
}

type fakeOnChain struct {
	points []models.HolderPoint
	err    error
}

func (f *fakeOnChain) FetchHolderHistory(context.Context, string, time.Time, time.Time) ([]models.HolderPoint, error) {
	return f.points, f.err
}

func (f *fakeOnChain) FetchSniperActivity(context.Context, string) ([]models.SniperTrade, error) {
	return nil, f.err
}

type fakeWallet struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	decimals int32
	err      error
}

func newFakeWallet() *fakeWallet {
	return &fakeWallet{balances: map[string]decimal.Decimal{}, decimals: 6}
}

func (w *fakeWallet) TokenBalance(_ context.Context, mint string) (exchange.Balance, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return exchange.Balance{}, w.err
	}
	return exchange.Balance{Amount: w.balances[mint], Decimals: w.decimals}, nil
}

func (w *fakeWallet) add(mint string, amount decimal.Decimal) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[mint] = w.balances[mint].Add(amount)
}

type swapCall struct {
	in, out string
	amount  decimal.Decimal
}

// fakeSwapper двигает балансы fakeWallet: покупка начисляет fill, продажа списывает.
type fakeSwapper struct {
	mu     sync.Mutex
	wallet *fakeWallet
	fill   decimal.Decimal
	errs   []error
	calls  []swapCall
}

func (s *fakeSwapper) ExecuteSwap(_ context.Context, in, out string, amount decimal.Decimal, _ exchange.SwapOpts) (exchange.SwapResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, swapCall{in: in, out: out, amount: amount})
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return exchange.SwapResult{}, err
		}
	}
	if in == exchange.SOLMint {
		s.wallet.add(out, s.fill)
	} else {
		s.wallet.add(in, exchange.FromBaseUnits(amount, s.wallet.decimals).Neg())
	}
	return exchange.SwapResult{Signature: "sig", InputAmount: amount}, nil
}

func (s *fakeSwapper) sells() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.out == exchange.SOLMint {
			n++
		}
	}
	return n
}

type env struct {
	cfg     *config.Config
	market  *fakeMarket
	onchain *fakeOnChain
	wallet  *fakeWallet
	swapper *fakeSwapper
	lc      *Lifecycle
}

func newEnv(mutate func(cfg *config.Config)) *env {
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	e := &env{
		cfg:     &cfg,
		market:  &fakeMarket{},
		onchain: &fakeOnChain{err: errors.New("holders unavailable")},
		wallet:  newFakeWallet(),
	}
	e.swapper = &fakeSwapper{wallet: e.wallet, fill: decimal.NewFromInt(1000)}
	e.lc = NewLifecycle(e.cfg, zap.NewNop(), e.market, e.onchain, e.swapper, e.wallet, notify.Nop{}, nil)
	return e
}

// hold кладёт позицию в слот напрямую, минуя покупку.
func (e *env) hold(token string, entry float64, amount int64) *models.Position {
	p := &models.Position{
		TokenAddress:    token,
		PoolAddress:     "pool-" + token,
		Symbol:          "TKN",
		EntryPrice:      entry,
		HighestPrice:    entry,
		LastPrice:       entry,
		InitialAmount:   decimal.NewFromInt(amount),
		AmountRemaining: decimal.NewFromInt(amount),
		Decimals:        e.wallet.decimals,
		Tiers:           append([]models.Tier(nil), e.cfg.Position.Tiers...),
		Status:          models.StatusOpen,
	}
	e.wallet.add(token, decimal.NewFromInt(amount))
	e.lc.setPosition(p)
	return p
}

// withRetries пересобирает слот со свопером за политикой повторов, как в проде.
func (e *env) withRetries(policy exchange.RetryPolicy) {
	rs := exchange.NewRetryingSwapper(e.swapper, policy, zap.NewNop(), nil)
	e.lc = NewLifecycle(e.cfg, zap.NewNop(), e.market, e.onchain, rs, e.wallet, notify.Nop{}, nil)
}
