package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"

	"dex_trader/internal/exchange"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type confirmer interface {
	Confirm(ctx context.Context, sig string) error
}

type swapRequest struct {
	InputMint   string `json:"inputMint"`
	OutputMint  string `json:"outputMint"`
	Amount      string `json:"amount"`
	SlippageBps int    `json:"slippageBps"`
}

type swapResponse struct {
	Signature string `json:"signature"`
	Error     string `json:"error"`
}

// Executor отправляет своп во внешний сервис исполнения (он подписывает и
// отправляет транзакцию) и дожидается подтверждения в сети.
type Executor struct {
	url       string
	http      *http.Client
	confirmer confirmer
	log       *zap.Logger
}

func NewExecutor(baseURL string, client *http.Client, c confirmer, log *zap.Logger) *Executor {
	return &Executor{url: baseURL, http: client, confirmer: c, log: log}
}

func (e *Executor) ExecuteSwap(
	ctx context.Context,
	inputMint, outputMint string,
	amount decimal.Decimal,
	opts exchange.SwapOpts,
) (exchange.SwapResult, error) {
	if e.url == "" {
		return exchange.SwapResult{}, errors.Wrap(exchange.ErrSwapFailed, "executor url is not configured")
	}

	payload, err := sonic.Marshal(swapRequest{
		InputMint:   inputMint,
		OutputMint:  outputMint,
		Amount:      amount.String(),
		SlippageBps: opts.SlippageBps,
	})
	if err != nil {
		return exchange.SwapResult{}, errors.Wrap(err, "marshal swap request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url+"/swap", bytes.NewReader(payload))
	if err != nil {
		return exchange.SwapResult{}, errors.Wrap(err, "build swap request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		// таймаут мог случиться уже после отправки транзакции
		var ue *url.Error
		if errors.As(err, &ue) && ue.Timeout() {
			return exchange.SwapResult{}, errors.Wrapf(exchange.ErrUnconfirmed, "executor timeout: %v", err)
		}
		return exchange.SwapResult{}, errors.Wrapf(exchange.ErrSwapFailed, "executor: %v", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return exchange.SwapResult{}, errors.Wrapf(exchange.ErrUnconfirmed, "read executor response: %v", err)
	}

	var sr swapResponse
	_ = sonic.Unmarshal(b, &sr)
	if resp.StatusCode/100 != 2 || sr.Signature == "" {
		msg := sr.Error
		if msg == "" {
			msg = string(b)
		}
		return exchange.SwapResult{}, errors.Wrapf(exchange.ErrSwapFailed, "executor http %d: %s", resp.StatusCode, msg)
	}

	e.log.Info("swap sent",
		zap.String("signature", sr.Signature),
		zap.String("input", inputMint),
		zap.String("output", outputMint),
		zap.String("amount", amount.String()),
		zap.Int("slippage_bps", opts.SlippageBps),
	)

	res := exchange.SwapResult{Signature: sr.Signature, InputAmount: amount}
	if err := e.confirmer.Confirm(ctx, sr.Signature); err != nil {
		return res, err
	}
	return res, nil
}
