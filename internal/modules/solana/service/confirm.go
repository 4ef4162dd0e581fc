package service

import (
	"context"
	"time"

	"dex_trader/internal/exchange"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// StatusWaiter ждёт финального статуса подписи.
type StatusWaiter interface {
	Wait(ctx context.Context, sig string) (SignatureStatus, error)
}

// StatusPoller разово спрашивает статус подписи.
type StatusPoller interface {
	SignatureStatus(ctx context.Context, sig string) (SignatureStatus, error)
}

// pollWaiter: замена websocket, если ws url не задан.
type pollWaiter struct {
	rpc      StatusPoller
	interval time.Duration
}

func (p pollWaiter) Wait(ctx context.Context, sig string) (SignatureStatus, error) {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		st, err := p.rpc.SignatureStatus(ctx, sig)
		if err == nil && st != StatusUnknown {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return StatusUnknown, ctx.Err()
		case <-t.C:
		}
	}
}

// Confirmer решает судьбу транзакции: ждёт подтверждения, а по таймауту
// делает ещё один опрос статуса после паузы.
type Confirmer struct {
	waiter       StatusWaiter
	poller       StatusPoller
	timeout      time.Duration
	extendedWait time.Duration
	log          *zap.Logger
}

func NewConfirmer(waiter StatusWaiter, poller StatusPoller, timeout, extendedWait time.Duration, log *zap.Logger) *Confirmer {
	return &Confirmer{
		waiter:       waiter,
		poller:       poller,
		timeout:      timeout,
		extendedWait: extendedWait,
		log:          log,
	}
}

func (c *Confirmer) Confirm(ctx context.Context, sig string) error {
	wctx, cancel := context.WithTimeout(ctx, c.timeout)
	st, err := c.waiter.Wait(wctx, sig)
	cancel()

	switch st {
	case StatusConfirmed:
		return nil
	case StatusFailed:
		return errors.Wrapf(exchange.ErrSwapFailed, "tx %s", sig)
	}
	if ctx.Err() != nil {
		return errors.Wrapf(exchange.ErrUnconfirmed, "tx %s: %v", sig, ctx.Err())
	}

	c.log.Warn("confirmation timed out, polling once more",
		zap.String("signature", sig),
		zap.Duration("extended_wait", c.extendedWait),
		zap.Error(err),
	)

	select {
	case <-time.After(c.extendedWait):
	case <-ctx.Done():
		return errors.Wrapf(exchange.ErrUnconfirmed, "tx %s: %v", sig, ctx.Err())
	}

	st, err = c.poller.SignatureStatus(ctx, sig)
	switch {
	case st == StatusConfirmed:
		return nil
	case st == StatusFailed:
		return errors.Wrapf(exchange.ErrSwapFailed, "tx %s", sig)
	case err != nil:
		return errors.Wrapf(exchange.ErrUnconfirmed, "tx %s: %v", sig, err)
	default:
		return errors.Wrapf(exchange.ErrUnconfirmed, "tx %s", sig)
	}
}

func NewPollWaiter(rpc StatusPoller, interval time.Duration) StatusWaiter {
	return pollWaiter{rpc: rpc, interval: interval}
}
