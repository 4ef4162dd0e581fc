package exchange

import (
	"context"

	"dex_trader/internal/metrics"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RetryPolicy: повтор свопа с уменьшенным объёмом и расширенным slippage.
type RetryPolicy struct {
	Attempts        int     `yaml:"attempts"`
	AmountShrink    float64 `yaml:"amount_shrink"`
	SlippageStepBps int     `yaml:"slippage_step_bps"`
	MaxSlippageBps  int     `yaml:"max_slippage_bps"`
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:        2,
		AmountShrink:    0.9,
		SlippageStepBps: 200,
		MaxSlippageBps:  2000,
	}
}

// RetryingSwapper оборачивает Swapper политикой повторов.
type RetryingSwapper struct {
	next    Swapper
	policy  RetryPolicy
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewRetryingSwapper(next Swapper, policy RetryPolicy, log *zap.Logger, m *metrics.Metrics) *RetryingSwapper {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if policy.AmountShrink <= 0 || policy.AmountShrink > 1 {
		policy.AmountShrink = 1
	}
	return &RetryingSwapper{next: next, policy: policy, log: log, metrics: m}
}

func (r *RetryingSwapper) ExecuteSwap(
	ctx context.Context,
	inputMint, outputMint string,
	amount decimal.Decimal,
	opts SwapOpts,
) (SwapResult, error) {
	cur := amount
	slip := opts.SlippageBps
	shrink := decimal.NewFromFloat(r.policy.AmountShrink)

	var lastErr error
	for attempt := 0; attempt < r.policy.Attempts; attempt++ {
		if attempt > 0 {
			if !opts.KeepAmount {
				cur = cur.Mul(shrink).Truncate(0)
			}
			slip += r.policy.SlippageStepBps
			if r.policy.MaxSlippageBps > 0 && slip > r.policy.MaxSlippageBps {
				slip = r.policy.MaxSlippageBps
			}
			if !cur.IsPositive() {
				break
			}
		}

		res, err := r.next.ExecuteSwap(ctx, inputMint, outputMint, cur, SwapOpts{SlippageBps: slip, KeepAmount: opts.KeepAmount})
		if err == nil {
			r.metrics.SwapAttempt("ok")
			if res.InputAmount.IsZero() {
				res.InputAmount = cur
			}
			return res, nil
		}
		lastErr = err

		// повтор неясной транзакции может продать второй раз
		if errors.Is(err, ErrUnconfirmed) {
			r.metrics.SwapAttempt("unconfirmed")
			return SwapResult{}, err
		}
		r.metrics.SwapAttempt("failed")
		if ctx.Err() != nil {
			return SwapResult{}, errors.Wrap(ctx.Err(), "swap cancelled")
		}

		r.log.Warn("swap attempt failed",
			zap.Int("attempt", attempt+1),
			zap.String("input", inputMint),
			zap.String("output", outputMint),
			zap.String("amount", cur.String()),
			zap.Int("slippage_bps", slip),
			zap.Error(err),
		)
	}

	if lastErr == nil {
		lastErr = ErrSwapFailed
	}
	return SwapResult{}, errors.Wrapf(lastErr, "swap %s->%s after %d attempts", inputMint, outputMint, r.policy.Attempts)
}
