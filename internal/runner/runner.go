package runner

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"dex_trader/internal/helper"
	"dex_trader/internal/models"
	"dex_trader/internal/modules/config"
	discovery "dex_trader/internal/modules/discovery/service"
	health "dex_trader/internal/modules/health/service"
	"dex_trader/internal/notify"
	"dex_trader/internal/runner/sessions"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type cycleRunner interface {
	RunCycle(ctx context.Context) ([]models.CandidateToken, error)
}

type slot interface {
	AdmitIfEligible(ctx context.Context, candidates []models.CandidateToken) (*models.Position, error)
	MonitorTick(ctx context.Context) (sessions.TickResult, error)
	Position() (models.Position, bool)
	HasPosition() bool
}

// Runner держит два расписания: discovery + admission и мониторинг позиции.
// Мониторинг живёт только пока слот занят.
type Runner struct {
	cfg      *config.Config
	log      *zap.Logger
	funnel   cycleRunner
	slot     slot
	state    *health.State
	notifier notify.Notifier

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu            sync.Mutex
	monitorCancel context.CancelFunc
}

func New(
	cfg *config.Config,
	log *zap.Logger,
	funnel *discovery.Funnel,
	lc *sessions.Lifecycle,
	state *health.State,
	notifier notify.Notifier,
) *Runner {
	return newRunner(cfg, log, funnel, lc, state, notifier)
}

func newRunner(cfg *config.Config, log *zap.Logger, funnel cycleRunner, s slot, state *health.State, notifier notify.Notifier) *Runner {
	return &Runner{
		cfg:      cfg,
		log:      log.Named("runner"),
		funnel:   funnel,
		slot:     s,
		state:    state,
		notifier: notifier,
	}
}

func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.wg.Add(1)
	go r.discoveryLoop(ctx)

	r.notifier.Sendf("🚀 Бот запущен | discovery=%s monitor=%s buy=%.3f SOL",
		r.cfg.Discovery.Interval, r.cfg.Position.MonitorInterval, r.cfg.Position.BuyAmountSOL)
}

// Stop гасит оба цикла и ждёт их. Открытую позицию не трогаем.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "runner stop")
	}

	if p, ok := r.slot.Position(); ok {
		r.log.Warn("stopping with an open position",
			zap.String("token", p.TokenAddress),
			zap.String("amount", p.AmountRemaining.String()),
		)
		r.notifier.Sendf("🛑 Бот остановлен с открытой позицией %s (%s), остаток=%s. Нужен ручной контроль.",
			p.Symbol, helper.ShortAddr(p.TokenAddress), p.AmountRemaining.StringFixed(4))
	}
	return nil
}

func (r *Runner) discoveryLoop(ctx context.Context) {
	defer r.wg.Done()

	// позиция могла остаться в слоте
	if r.slot.HasPosition() {
		r.startMonitor(ctx)
	}

	ticker := time.NewTicker(r.cfg.Discovery.Interval)
	defer ticker.Stop()

	for {
		r.discoverOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *Runner) discoverOnce(ctx context.Context) {
	defer r.recoverCycle("discovery")

	// слот занят: кандидаты всё равно некуда брать
	if r.slot.HasPosition() {
		r.log.Debug("slot is busy, discovery skipped")
		return
	}

	candidates, err := r.funnel.RunCycle(ctx)
	r.state.TouchDiscovery(time.Now())
	if err != nil {
		if ctx.Err() == nil {
			r.log.Error("discovery cycle failed", zap.Error(err))
		}
		return
	}
	r.state.SetReady(true)

	if len(candidates) == 0 {
		return
	}
	pos, err := r.slot.AdmitIfEligible(ctx, candidates)
	if err != nil {
		r.log.Error("admission failed", zap.Error(err))
		return
	}
	if pos == nil {
		r.log.Info("no eligible candidates", zap.Int("candidates", len(candidates)))
		return
	}

	r.state.SetPositionOpen(true)
	r.startMonitor(ctx)
}

func (r *Runner) startMonitor(parent context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.monitorCancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(parent)
	r.monitorCancel = cancel
	r.wg.Add(1)
	go r.monitorLoop(ctx)
}

func (r *Runner) monitorLoop(ctx context.Context) {
	defer r.wg.Done()
	defer func() {
		r.mu.Lock()
		if r.monitorCancel != nil {
			r.monitorCancel()
			r.monitorCancel = nil
		}
		r.mu.Unlock()
	}()

	ticker := time.NewTicker(r.cfg.Position.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		r.monitorOnce(ctx)
		if !r.slot.HasPosition() {
			r.state.SetPositionOpen(false)
			r.log.Info("slot is empty, monitoring stopped")
			return
		}
	}
}

func (r *Runner) monitorOnce(ctx context.Context) {
	defer r.recoverCycle("monitor")

	res, err := r.slot.MonitorTick(ctx)
	r.state.TouchMonitor(time.Now())
	if err != nil {
		if ctx.Err() == nil {
			r.log.Error("monitor tick failed", zap.Error(err))
		}
		return
	}
	if res.Action != models.ActionNone {
		r.log.Info("exit executed", zap.String("action", string(res.Action)), zap.String("reason", res.Reason))
	}
}

// recoverCycle: паника в одном цикле не останавливает расписание.
func (r *Runner) recoverCycle(name string) {
	if rec := recover(); rec != nil {
		r.log.Error("cycle panicked",
			zap.String("cycle", name),
			zap.Any("panic", rec),
			zap.ByteString("stack", debug.Stack()),
		)
	}
}
