package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PositionStatus string

const (
	StatusOpen            PositionStatus = "OPEN"
	StatusPartiallyClosed PositionStatus = "PARTIALLY_CLOSED"
	StatusClosed          PositionStatus = "CLOSED"
)

// Tier: ступень частичной фиксации прибыли.
type Tier struct {
	ProfitThresholdPct  float64 `yaml:"profit_pct"`
	PositionFractionPct float64 `yaml:"fraction_pct"`
	Executed            bool    `yaml:"-"`
}

type Position struct {
	TokenAddress string
	PoolAddress  string
	Symbol       string

	EntryPrice   float64
	EntryTime    time.Time
	HighestPrice float64
	LastPrice    float64

	// объёмы в UI-единицах токена
	InitialAmount   decimal.Decimal
	AmountRemaining decimal.Decimal
	Decimals        int32

	Tiers  []Tier
	Status PositionStatus
}

// ProfitPct: текущий PnL в процентах от входа.
func (p *Position) ProfitPct(price float64) float64 {
	if p.EntryPrice <= 0 {
		return 0
	}
	return (price - p.EntryPrice) / p.EntryPrice * 100
}

// ObservePrice обновляет пик. Пик не опускается ниже входа.
func (p *Position) ObservePrice(price float64) {
	p.LastPrice = price
	if price > p.HighestPrice {
		p.HighestPrice = price
	}
	if p.HighestPrice < p.EntryPrice {
		p.HighestPrice = p.EntryPrice
	}
}

// ExecutedFractionPct: сумма долей уже исполненных ступеней.
func (p *Position) ExecutedFractionPct() float64 {
	var s float64
	for _, t := range p.Tiers {
		if t.Executed {
			s += t.PositionFractionPct
		}
	}
	return s
}

// Empty: остаток меньше одной минимальной единицы токена.
func (p *Position) Empty() bool {
	return !p.AmountRemaining.Shift(p.Decimals).Truncate(0).IsPositive()
}

// Clone: глубокая копия для отдачи наружу.
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Tiers = append([]Tier(nil), p.Tiers...)
	return &cp
}

type ExitAction string

const (
	ActionNone        ExitAction = "NONE"
	ActionPartialSell ExitAction = "PARTIAL_SELL"
	ActionFullSell    ExitAction = "FULL_SELL"
)

// ExitDecision: результат проверки правил выхода на одном тике.
type ExitDecision struct {
	Action ExitAction
	Reason string
	// Kind: короткая метка правила для метрик.
	Kind string
	// TierIndex: индекс ступени в Position.Tiers для PARTIAL_SELL, иначе -1.
	TierIndex   int
	FractionPct float64
}
