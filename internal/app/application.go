package app

import (
	"context"
	"fmt"

	cardsvc "github.com/sorteiohub/draw-engine/internal/app/services/cards"
	drawsvc "github.com/sorteiohub/draw-engine/internal/app/services/draws"
	gamesvc "github.com/sorteiohub/draw-engine/internal/app/services/games"
	"github.com/sorteiohub/draw-engine/internal/app/storage"
	"github.com/sorteiohub/draw-engine/internal/app/storage/memory"
	"github.com/sorteiohub/draw-engine/internal/app/system"
	"github.com/sorteiohub/draw-engine/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Games  storage.GameStore
	Claims storage.ClaimStore
	Draws  storage.DrawStore
	Cards  storage.CardStore
}

// Application ties the engine's services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Games *gamesvc.Service
	Draws *drawsvc.Service
	Cards *cardsvc.Service

	Scheduler *drawsvc.Scheduler
	Auditor   *cardsvc.Auditor
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Games == nil {
		stores.Games = mem
	}
	if stores.Claims == nil {
		stores.Claims = mem
	}
	if stores.Draws == nil {
		stores.Draws = mem
	}
	if stores.Cards == nil {
		stores.Cards = mem
	}

	manager := system.NewManager()

	gameService := gamesvc.New(stores.Games, stores.Claims, log)
	drawService := drawsvc.New(stores.Games, stores.Claims, stores.Draws, log)
	cardService := cardsvc.New(stores.Games, stores.Cards, log)

	scheduler := drawsvc.NewScheduler(drawService, stores.Games, gameService, log)
	auditor := cardsvc.NewAuditor(cardService, stores.Games, log)

	for _, svc := range []system.Service{scheduler, auditor} {
		if err := manager.Register(svc); err != nil {
			return nil, fmt.Errorf("register %s: %w", svc.Name(), err)
		}
	}

	return &Application{
		manager:   manager,
		log:       log,
		Games:     gameService,
		Draws:     drawService,
		Cards:     cardService,
		Scheduler: scheduler,
		Auditor:   auditor,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
