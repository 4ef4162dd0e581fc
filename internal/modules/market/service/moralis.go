package service

import (
	"context"
	"net/url"
	"time"

	"dex_trader/internal/exchange"
	"dex_trader/internal/models"

	"github.com/tidwall/gjson"
)

// Moralis: холдеры и снайперы. Без API ключа источник выключен.
type Moralis struct {
	c       *sourceClient
	enabled bool
}

func NewMoralis(c *sourceClient, apiKey string) *Moralis {
	if apiKey != "" {
		c.headers["X-API-Key"] = apiKey
	}
	return &Moralis{c: c, enabled: apiKey != ""}
}

func (m *Moralis) HolderHistory(ctx context.Context, token string, from, to time.Time) ([]models.HolderPoint, error) {
	if !m.enabled {
		return nil, exchange.ErrSourceDisabled
	}
	q := url.Values{
		"fromDate":  {from.UTC().Format(time.RFC3339)},
		"toDate":    {to.UTC().Format(time.RFC3339)},
		"timeFrame": {"1h"},
	}
	body, err := m.c.get(ctx, "/token/mainnet/holders/"+token+"/historical", q)
	if err != nil {
		return nil, err
	}

	var out []models.HolderPoint
	gjson.GetBytes(body, "result").ForEach(func(_, r gjson.Result) bool {
		ts, err := time.Parse(time.RFC3339, r.Get("timestamp").String())
		if err != nil {
			return true
		}
		out = append(out, models.HolderPoint{Timestamp: ts, TotalHolders: r.Get("totalHolders").Int()})
		return true
	})
	return out, nil
}

func (m *Moralis) SniperActivity(ctx context.Context, pool string) ([]models.SniperTrade, error) {
	if !m.enabled {
		return nil, exchange.ErrSourceDisabled
	}
	body, err := m.c.get(ctx, "/token/mainnet/pairs/"+pool+"/snipers", url.Values{"blocksAfterCreation": {"1000"}})
	if err != nil {
		return nil, err
	}

	var out []models.SniperTrade
	gjson.GetBytes(body, "result").ForEach(func(_, r gjson.Result) bool {
		out = append(out, models.SniperTrade{
			WalletAddress:     r.Get("walletAddress").String(),
			RealizedProfitUSD: r.Get("realizedProfitUsd").Float(),
		})
		return true
	})
	return out, nil
}
