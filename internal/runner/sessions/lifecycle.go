package sessions

import (
	"sync"
	"time"

	"dex_trader/internal/exchange"
	"dex_trader/internal/metrics"
	"dex_trader/internal/models"
	"dex_trader/internal/modules/config"
	"dex_trader/internal/notify"

	"go.uber.org/zap"
)

// defaultTokenDecimals: если кошелёк не ответил, а купить уже купили.
const defaultTokenDecimals int32 = 6

// TickResult: итог одного тика мониторинга.
type TickResult struct {
	Action   models.ExitAction
	Reason   string
	Position *models.Position
}

// Lifecycle владеет единственным слотом позиции.
// opMu сериализует admission и тики, mu охраняет сам слот.
type Lifecycle struct {
	cfg *config.Config
	log *zap.Logger

	market  exchange.MarketData
	onchain exchange.OnChainData
	swapper exchange.Swapper
	wallet  exchange.Wallet

	notifier notify.Notifier
	metrics  *metrics.Metrics

	opMu sync.Mutex
	mu   sync.RWMutex
	pos  *models.Position

	now func() time.Time
}

func NewLifecycle(
	cfg *config.Config,
	log *zap.Logger,
	market exchange.MarketData,
	onchain exchange.OnChainData,
	swapper exchange.Swapper,
	wallet exchange.Wallet,
	notifier notify.Notifier,
	m *metrics.Metrics,
) *Lifecycle {
	return &Lifecycle{
		cfg:      cfg,
		log:      log.Named("lifecycle"),
		market:   market,
		onchain:  onchain,
		swapper:  swapper,
		wallet:   wallet,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
}

// Position: копия текущей позиции.
func (l *Lifecycle) Position() (models.Position, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.pos == nil {
		return models.Position{}, false
	}
	return *l.pos.Clone(), true
}

func (l *Lifecycle) HasPosition() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.pos != nil
}

func (l *Lifecycle) setPosition(p *models.Position) {
	l.mu.Lock()
	l.pos = p
	l.mu.Unlock()
}

func (l *Lifecycle) current() *models.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.pos
}

// update меняет позицию под локом слота.
func (l *Lifecycle) update(fn func(p *models.Position)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pos != nil {
		fn(l.pos)
	}
}
