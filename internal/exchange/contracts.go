// Package exchange описывает контракты внешних сервисов: маркет-данные,
// on-chain данные, свопы, кошелёк и блеклист.
package exchange

import (
	"context"
	"time"

	"dex_trader/internal/models"

	"github.com/shopspring/decimal"
)

// SOLMint: wrapped SOL, базовый актив для покупок.
const SOLMint = "So11111111111111111111111111111111111111112"

const SOLDecimals int32 = 9

type Timeframe string

const (
	TimeframeMinute Timeframe = "minute"
	TimeframeHour   Timeframe = "hour"
	TimeframeDay    Timeframe = "day"
)

type MarketData interface {
	// FetchCandidateTokens: кандидаты из одного источника (boosted или trending).
	FetchCandidateTokens(ctx context.Context, source models.Source) ([]models.CandidateToken, error)
	// FetchPairDetail возвращает nil без ошибки, если пул неизвестен.
	FetchPairDetail(ctx context.Context, pool string) (*models.PairDetail, error)
	// FetchOHLCV возвращает пустой слайс, если данных нет.
	FetchOHLCV(ctx context.Context, pool string, tf Timeframe, aggregate int) ([]models.Candle, error)
}

type OnChainData interface {
	FetchHolderHistory(ctx context.Context, token string, from, to time.Time) ([]models.HolderPoint, error)
	FetchSniperActivity(ctx context.Context, pool string) ([]models.SniperTrade, error)
}

type SwapOpts struct {
	SlippageBps int
	// KeepAmount запрещает ретраям уменьшать объём (полный выход).
	KeepAmount bool
}

type SwapResult struct {
	Signature string
	// InputAmount: фактически отправленное количество (base units).
	InputAmount decimal.Decimal
}

// Swapper исполняет своп. amount в base units входного минта.
// Полученное количество надо читать из баланса, а не из котировки.
type Swapper interface {
	ExecuteSwap(ctx context.Context, inputMint, outputMint string, amount decimal.Decimal, opts SwapOpts) (SwapResult, error)
}

type Balance struct {
	// Amount в UI единицах.
	Amount   decimal.Decimal
	Decimals int32
}

type Wallet interface {
	TokenBalance(ctx context.Context, mint string) (Balance, error)
}

type Blacklist interface {
	IsBlacklisted(address string) bool
}

// ToBaseUnits переводит UI количество в целые base units.
func ToBaseUnits(amount decimal.Decimal, decimals int32) decimal.Decimal {
	return amount.Shift(decimals).Truncate(0)
}

func FromBaseUnits(amount decimal.Decimal, decimals int32) decimal.Decimal {
	return amount.Shift(-decimals)
}
