package scoring

import (
	"testing"
	"time"

	"dex_trader/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestHolderChangePct(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	pts := []models.HolderPoint{
		{Timestamp: now, TotalHolders: 1200},
		{Timestamp: now.Add(-48 * time.Hour), TotalHolders: 500},
		{Timestamp: now.Add(-24 * time.Hour), TotalHolders: 1000},
		{Timestamp: now.Add(-12 * time.Hour), TotalHolders: 1100},
	}

	v, ok := HolderChangePct(pts, 24*time.Hour)
	assert.True(t, ok)
	assert.InDelta(t, 20.0, v, 1e-9)

	// истории меньше окна, база = самая старая точка
	v, ok = HolderChangePct(pts[2:], 72*time.Hour)
	assert.True(t, ok)
	assert.InDelta(t, 10.0, v, 1e-9)
}

func TestHolderChangePctUnknown(t *testing.T) {
	now := time.Now()
	_, ok := HolderChangePct(nil, time.Hour)
	assert.False(t, ok)

	_, ok = HolderChangePct([]models.HolderPoint{{Timestamp: now, TotalHolders: 10}}, time.Hour)
	assert.False(t, ok)

	_, ok = HolderChangePct([]models.HolderPoint{
		{Timestamp: now.Add(-time.Hour), TotalHolders: 0},
		{Timestamp: now, TotalHolders: 10},
	}, 24*time.Hour)
	assert.False(t, ok)
}
