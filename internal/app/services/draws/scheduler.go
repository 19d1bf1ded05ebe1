package draws

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sorteiohub/draw-engine/internal/app/domain/game"
	"github.com/sorteiohub/draw-engine/internal/app/storage"
	"github.com/sorteiohub/draw-engine/internal/app/system"
	"github.com/sorteiohub/draw-engine/pkg/logger"
)

var _ system.Service = (*Scheduler)(nil)

// Scheduler periodically scans for games whose cron schedule has come due
// and runs their draws. Games without a schedule are drawn manually only.
type Scheduler struct {
	service  *Service
	games    storage.GameStore
	closer   GameCloser
	log      *logger.Logger
	interval time.Duration
	parser   cron.Parser

	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
	lastScan time.Time
}

// GameCloser closes an open game before its scheduled draw runs.
type GameCloser interface {
	Close(ctx context.Context, id string) (game.Game, error)
}

// NewScheduler constructs a lifecycle-managed draw scheduler.
func NewScheduler(service *Service, games storage.GameStore, closer GameCloser, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewDefault("draw-scheduler")
	}
	return &Scheduler{
		service:  service,
		games:    games,
		closer:   closer,
		log:      log,
		interval: 30 * time.Second,
		parser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
	}
}

// WithInterval overrides the scan interval, mainly for tests.
func (s *Scheduler) WithInterval(d time.Duration) {
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
}

func (s *Scheduler) Name() string { return "draw-scheduler" }

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.lastScan = time.Now().UTC()
	interval := s.interval
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.scan(runCtx)
			}
		}
	}()

	s.log.Info("draw scheduler started")
	return nil
}

func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.log.Info("draw scheduler stopped")
	return nil
}

func (s *Scheduler) scan(ctx context.Context) {
	s.mu.Lock()
	since := s.lastScan
	now := time.Now().UTC()
	s.lastScan = now
	s.mu.Unlock()

	games, err := s.games.ListGames(ctx, "")
	if err != nil {
		s.log.WithError(err).Warnf("scheduler could not list games")
		return
	}

	for _, g := range games {
		if g.DrawSchedule == "" || g.Status == game.StatusDrawn {
			continue
		}
		sched, err := s.parser.Parse(g.DrawSchedule)
		if err != nil {
			s.log.WithField("game_id", g.ID).WithError(err).Warnf("invalid draw schedule %q", g.DrawSchedule)
			continue
		}
		if next := sched.Next(since); next.After(now) {
			continue
		}
		s.runDraw(ctx, g)
	}
}

func (s *Scheduler) runDraw(ctx context.Context, g game.Game) {
	log := s.log.WithField("game_id", g.ID)

	if g.Status == game.StatusOpen && s.closer != nil {
		if _, err := s.closer.Close(ctx, g.ID); err != nil {
			log.WithError(err).Warnf("scheduled close failed")
			return
		}
	}

	if _, err := s.service.Execute(ctx, g.ID); err != nil {
		log.WithError(err).Warnf("scheduled draw failed")
		return
	}
	log.Infof("scheduled draw executed")
}
