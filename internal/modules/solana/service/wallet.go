package service

import (
	"context"

	"dex_trader/internal/exchange"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type Wallet struct {
	rpc   *RPC
	owner string
}

func NewWallet(rpc *RPC, owner string) *Wallet {
	return &Wallet{rpc: rpc, owner: owner}
}

func (w *Wallet) TokenBalance(ctx context.Context, mint string) (exchange.Balance, error) {
	if w.owner == "" {
		return exchange.Balance{}, errors.New("wallet address is not configured")
	}
	return w.rpc.TokenBalance(ctx, w.owner, mint)
}

func (w *Wallet) NativeBalance(ctx context.Context) (decimal.Decimal, error) {
	if w.owner == "" {
		return decimal.Zero, errors.New("wallet address is not configured")
	}
	return w.rpc.NativeBalance(ctx, w.owner)
}
