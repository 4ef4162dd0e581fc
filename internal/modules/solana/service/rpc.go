package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"dex_trader/internal/exchange"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

type SignatureStatus int

const (
	StatusUnknown SignatureStatus = iota
	StatusConfirmed
	StatusFailed
)

func (s SignatureStatus) String() string {
	switch s {
	case StatusConfirmed:
		return "confirmed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// RPC: минимальный JSON-RPC клиент Solana.
type RPC struct {
	url  string
	http *http.Client
	id   atomic.Uint64
}

func NewRPC(url string) *RPC {
	return &RPC{url: url, http: &http.Client{Timeout: 15 * time.Second}}
}

func (r *RPC) call(ctx context.Context, method string, params ...any) (gjson.Result, error) {
	payload, err := sonic.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      r.id.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return gjson.Result{}, errors.Wrap(err, "marshal rpc request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return gjson.Result{}, errors.Wrapf(err, "rpc %s", method)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, errors.Wrap(err, "read rpc body")
	}
	if resp.StatusCode/100 != 2 {
		return gjson.Result{}, errors.Errorf("rpc %s: http %d: %s", method, resp.StatusCode, string(b))
	}

	res := gjson.ParseBytes(b)
	if e := res.Get("error"); e.Exists() && e.Type != gjson.Null {
		return gjson.Result{}, errors.Errorf("rpc %s: %s", method, e.Get("message").String())
	}
	return res.Get("result"), nil
}

// SignatureStatus: статус транзакции; processed считаем неизвестным.
func (r *RPC) SignatureStatus(ctx context.Context, sig string) (SignatureStatus, error) {
	res, err := r.call(ctx, "getSignatureStatuses", []string{sig}, map[string]bool{"searchTransactionHistory": true})
	if err != nil {
		return StatusUnknown, err
	}
	v := res.Get("value.0")
	if !v.Exists() || v.Type == gjson.Null {
		return StatusUnknown, nil
	}
	if e := v.Get("err"); e.Exists() && e.Type != gjson.Null {
		return StatusFailed, nil
	}
	switch v.Get("confirmationStatus").String() {
	case "confirmed", "finalized":
		return StatusConfirmed, nil
	}
	return StatusUnknown, nil
}

// TokenBalance: сумма по всем токен-аккаунтам владельца для минта.
func (r *RPC) TokenBalance(ctx context.Context, owner, mint string) (exchange.Balance, error) {
	res, err := r.call(ctx, "getTokenAccountsByOwner",
		owner,
		map[string]string{"mint": mint},
		map[string]string{"encoding": "jsonParsed", "commitment": "confirmed"},
	)
	if err != nil {
		return exchange.Balance{}, err
	}

	total := decimal.Zero
	var decimals int32
	var parseErr error
	res.Get("value").ForEach(func(_, acc gjson.Result) bool {
		ta := acc.Get("account.data.parsed.info.tokenAmount")
		amt, err := decimal.NewFromString(ta.Get("amount").String())
		if err != nil {
			parseErr = errors.Wrapf(err, "token amount for %s", mint)
			return false
		}
		total = total.Add(amt)
		decimals = int32(ta.Get("decimals").Int())
		return true
	})
	if parseErr != nil {
		return exchange.Balance{}, parseErr
	}
	return exchange.Balance{Amount: exchange.FromBaseUnits(total, decimals), Decimals: decimals}, nil
}

// NativeBalance: баланс SOL на счёте (getBalance, лампорты → SOL).
func (r *RPC) NativeBalance(ctx context.Context, owner string) (decimal.Decimal, error) {
	res, err := r.call(ctx, "getBalance", owner, map[string]string{"commitment": "confirmed"})
	if err != nil {
		return decimal.Zero, err
	}
	lamports := decimal.NewFromInt(res.Get("value").Int())
	return exchange.FromBaseUnits(lamports, exchange.SOLDecimals), nil
}
