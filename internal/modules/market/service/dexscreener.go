package service

import (
	"context"
	"strings"
	"time"

	"dex_trader/internal/models"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	chainSolana   = "solana"
	dexBatchLimit = 30
)

type DexScreener struct {
	c   *sourceClient
	now func() time.Time
}

func NewDexScreener(c *sourceClient) *DexScreener {
	return &DexScreener{c: c, now: time.Now}
}

// BoostedTokens: свежие boosted токены Solana, обогащённые лучшей (по ликвидности) парой.
func (d *DexScreener) BoostedTokens(ctx context.Context) ([]models.CandidateToken, error) {
	body, err := d.c.get(ctx, "/token-boosts/latest/v1", nil)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var addrs []string
	gjson.ParseBytes(body).ForEach(func(_, item gjson.Result) bool {
		if item.Get("chainId").String() != chainSolana {
			return true
		}
		a := item.Get("tokenAddress").String()
		if _, ok := seen[a]; ok || a == "" {
			return true
		}
		seen[a] = struct{}{}
		addrs = append(addrs, a)
		return true
	})

	var out []models.CandidateToken
	for start := 0; start < len(addrs); start += dexBatchLimit {
		end := min(start+dexBatchLimit, len(addrs))
		pairs, err := d.tokenPairs(ctx, addrs[start:end])
		if err != nil {
			d.c.log.Warn("boosted batch failed", zap.Error(err))
			continue
		}
		for _, a := range addrs[start:end] {
			p, ok := pairs[a]
			if !ok {
				continue
			}
			c := models.CandidateToken{Address: a, Source: models.SourceBoosted, Boosted: true}
			c.ApplyDetail(p)
			out = append(out, c)
		}
	}
	return out, nil
}

// tokenPairs: лучшая пара на каждый токен из батча.
func (d *DexScreener) tokenPairs(ctx context.Context, addrs []string) (map[string]models.PairDetail, error) {
	body, err := d.c.get(ctx, "/tokens/v1/solana/"+strings.Join(addrs, ","), nil)
	if err != nil {
		return nil, err
	}
	now := d.now()
	best := map[string]models.PairDetail{}
	gjson.ParseBytes(body).ForEach(func(_, p gjson.Result) bool {
		pd := parseDexPair(p, now)
		if cur, ok := best[pd.TokenAddress]; !ok || pd.Liquidity > cur.Liquidity {
			best[pd.TokenAddress] = pd
		}
		return true
	})
	return best, nil
}

// PairDetail: nil, если пул не найден.
func (d *DexScreener) PairDetail(ctx context.Context, pool string) (*models.PairDetail, error) {
	body, err := d.c.get(ctx, "/latest/dex/pairs/solana/"+pool, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	res := gjson.ParseBytes(body)
	p := res.Get("pair")
	if !p.Exists() || p.Type == gjson.Null {
		p = res.Get("pairs.0")
	}
	if !p.Exists() {
		return nil, nil
	}
	pd := parseDexPair(p, d.now())
	return &pd, nil
}
