package cards

import (
	"context"
	"sync"
	"time"

	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
	"github.com/sorteiohub/draw-engine/internal/app/storage"
	"github.com/sorteiohub/draw-engine/internal/app/system"
	"github.com/sorteiohub/draw-engine/pkg/logger"
)

var _ system.Service = (*Auditor)(nil)

// Auditor periodically re-verifies the seals of every scratch game so a
// corrupted or tampered store surfaces in the logs before a payout dispute.
type Auditor struct {
	service  *Service
	games    storage.GameStore
	log      *logger.Logger
	interval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewAuditor constructs a lifecycle-managed seal auditor.
func NewAuditor(service *Service, games storage.GameStore, log *logger.Logger) *Auditor {
	if log == nil {
		log = logger.NewDefault("card-auditor")
	}
	return &Auditor{
		service:  service,
		games:    games,
		log:      log,
		interval: 10 * time.Minute,
	}
}

// WithInterval overrides the audit interval, mainly for tests.
func (a *Auditor) WithInterval(d time.Duration) {
	a.mu.Lock()
	a.interval = d
	a.mu.Unlock()
}

func (a *Auditor) Name() string { return "card-auditor" }

func (a *Auditor) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.running = true
	interval := a.interval
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				a.sweep(runCtx)
			}
		}
	}()

	a.log.Info("card auditor started")
	return nil
}

func (a *Auditor) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	a.log.Info("card auditor stopped")
	return nil
}

func (a *Auditor) sweep(ctx context.Context) {
	games, err := a.games.ListGames(ctx, "")
	if err != nil {
		a.log.WithError(err).Warnf("auditor could not list games")
		return
	}

	for _, g := range games {
		if g.Type != game.TypeScratch {
			continue
		}
		report, err := a.service.Audit(ctx, g.ID)
		if err != nil {
			a.log.WithField("game_id", g.ID).WithError(err).Warnf("audit failed")
			continue
		}
		if report.Clean() {
			a.log.WithField("game_id", g.ID).Debugf("audit clean, %d cards checked", report.TotalCards)
		}
	}
}
