package scoring

import (
	"sort"
	"time"

	"dex_trader/internal/models"
)

// HolderChangePct: изменение числа холдеров за window относительно последней точки.
// Если истории меньше window, базой берётся самая старая точка.
// ok=false, когда посчитать нельзя (пусто или база нулевая).
func HolderChangePct(points []models.HolderPoint, window time.Duration) (float64, bool) {
	if len(points) < 2 {
		return 0, false
	}
	ps := append([]models.HolderPoint(nil), points...)
	sort.Slice(ps, func(i, j int) bool { return ps[i].Timestamp.Before(ps[j].Timestamp) })

	latest := ps[len(ps)-1]
	from := latest.Timestamp.Add(-window)
	base := ps[0]
	for _, p := range ps {
		if !p.Timestamp.Before(from) {
			base = p
			break
		}
	}
	if base.TotalHolders <= 0 || base.Timestamp.Equal(latest.Timestamp) {
		return 0, false
	}
	return float64(latest.TotalHolders-base.TotalHolders) / float64(base.TotalHolders) * 100, true
}
