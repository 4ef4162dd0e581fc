package service

import (
	"sync"
	"testing"

	"dex_trader/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type positions struct {
	p  models.Position
	ok bool
}

func (s positions) Position() (models.Position, bool) { return s.p, s.ok }

type blacklist map[string]bool

func (b blacklist) IsBlacklisted(a string) bool { return b[a] }
func (b blacklist) Add(a string)                { b[a] = true }

const usdc = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func TestHandleStatus(t *testing.T) {
	tg := &Telegram{positions: positions{}, blacklist: blacklist{}}
	assert.Contains(t, tg.handleCommand("status", ""), "нет")

	tg.positions = positions{ok: true, p: models.Position{
		TokenAddress:    usdc,
		Symbol:          "USDC",
		EntryPrice:      1,
		LastPrice:       1.2,
		HighestPrice:    1.25,
		InitialAmount:   decimal.NewFromInt(100),
		AmountRemaining: decimal.NewFromInt(75),
		Status:          models.StatusPartiallyClosed,
		Tiers: []models.Tier{
			{ProfitThresholdPct: 15, PositionFractionPct: 25, Executed: true},
			{ProfitThresholdPct: 30, PositionFractionPct: 25},
		},
	}}
	out := tg.handleCommand("status", "")
	assert.Contains(t, out, "USDC")
	assert.Contains(t, out, "PARTIALLY_CLOSED")
	assert.Contains(t, out, "PnL=20.00%")
	assert.Contains(t, out, "amount=75.0000 / 100.0000")
	assert.Contains(t, out, "+15.00% → 25.00% ✅")
	assert.Contains(t, out, "+30.00% → 25.00% ⏳")
}

func TestHandleBlacklist(t *testing.T) {
	bl := blacklist{}
	tg := &Telegram{positions: positions{}, blacklist: bl}

	assert.Contains(t, tg.handleCommand("blacklist", "not-an-address"), "Формат")
	assert.Empty(t, bl)

	assert.Contains(t, tg.handleCommand("blacklist", " "+usdc+" "), "добавлен")
	assert.True(t, bl[usdc])
	assert.Contains(t, tg.handleCommand("blacklist", usdc), "уже")
}

func TestHandleUnknownCommand(t *testing.T) {
	tg := &Telegram{positions: positions{}, blacklist: blacklist{}}
	assert.Contains(t, tg.handleCommand("help", ""), "/status")
}

func TestAttachWhileHandlingCommands(t *testing.T) {
	tg := &Telegram{blacklist: blacklist{}}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = tg.handleCommand("status", "")
		}
	}()
	tg.Attach(positions{ok: true, p: models.Position{Symbol: "LIVE", TokenAddress: usdc}})
	wg.Wait()

	assert.Contains(t, tg.handleCommand("status", ""), "LIVE")
}
