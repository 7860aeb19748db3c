package core

import (
	"context"
	"log"
	"runtime/debug"
	"time"

	"github.com/automoto/bouncerz-mp/shared/arena"
	"golang.org/x/sync/errgroup"
)

// GameLoop ticks every registered room at arena.TickRate. Each tick steps the
// physics by arena.StepMillis, so the rate is fixed for server and predictors
// alike. Rooms are ticked in parallel, each in isolation: a room that panics
// is logged and skipped for that tick while the others carry on.
type GameLoop struct {
	rooms    *Manager
	interval time.Duration
	workers  int
	ticks    uint64
}

func NewGameLoop(rooms *Manager, workers int) *GameLoop {
	if workers <= 0 {
		workers = 1
	}
	return &GameLoop{
		rooms:    rooms,
		interval: time.Second / arena.TickRate,
		workers:  workers,
	}
}

// Run blocks until ctx is done.
func (g *GameLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	log.Printf("[loop] started at %d ticks/second", arena.TickRate)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[loop] stopped after %d ticks", g.ticks)
			return nil
		case <-ticker.C:
			g.tick()
		}
	}
}

func (g *GameLoop) tick() {
	g.ticks++

	var eg errgroup.Group
	eg.SetLimit(g.workers)
	for _, r := range g.rooms.Rooms() {
		eg.Go(func() error {
			tickRoom(r)
			return nil
		})
	}
	_ = eg.Wait()
}

func tickRoom(r *Room) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[loop] room %s tick panicked: %v\n%s", r.ID, p, debug.Stack())
		}
	}()
	r.Tick()
}
