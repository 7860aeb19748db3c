package core

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/automoto/bouncerz-mp/config"
	"github.com/automoto/bouncerz-mp/shared/arena"
	"github.com/automoto/bouncerz-mp/shared/leveldata"
	"github.com/automoto/bouncerz-mp/shared/messages"
	"github.com/automoto/bouncerz-mp/shared/netconfig"
	"github.com/automoto/bouncerz-mp/shared/physics"
	"github.com/yohamta/donburi"
)

var (
	// ErrRoomClosed is returned when joining a room whose match is over.
	ErrRoomClosed = errors.New("room closed")

	ErrAlreadyJoined = errors.New("player already in room")
)

// Timer is a pending deferred callback.
type Timer interface {
	Stop() bool
}

type afterFunc func(time.Duration, func()) Timer

func realAfter(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// roomHooks connect a room to its clock and its registry.
type roomHooks struct {
	now        func() time.Time
	after      afterFunc
	live       func(*Room) bool // still the registry's room for its id
	unregister func(*Room)
}

func (h *roomHooks) fill() {
	if h.now == nil {
		h.now = time.Now
	}
	if h.after == nil {
		h.after = realAfter
	}
	if h.live == nil {
		h.live = func(*Room) bool { return true }
	}
	if h.unregister == nil {
		h.unregister = func(*Room) {}
	}
}

// Room is one match: a private physics world, the players in it and the
// round state. Every method takes the room mutex, so gateway calls, ticks,
// deferred callbacks and destruction never interleave.
type Room struct {
	ID string

	mu     sync.Mutex
	rules  config.MatchConfig
	layout leveldata.Layout
	world  *physics.World
	ecs    donburi.World

	players map[string]donburi.Entity
	order   []string
	bodies  map[physics.BodyID]donburi.Entity
	scores  *Scoreboard

	round  int
	status netconfig.RoomStatus

	createdAt    time.Time
	lastActivity time.Time

	// closed is set once the match is over; destroyed once the room is torn
	// down. Both are read by the manager without the room lock.
	closed    atomic.Bool
	destroyed atomic.Bool

	timers    map[int]Timer
	nextTimer int
	hooks     roomHooks
}

func newRoom(id string, layout leveldata.Layout, rules config.MatchConfig, hooks roomHooks) *Room {
	hooks.fill()
	now := hooks.now()
	r := &Room{
		ID:           id,
		rules:        rules,
		layout:       layout.Clone(),
		world:        arena.NewWorld(layout),
		ecs:          donburi.NewWorld(),
		players:      make(map[string]donburi.Entity),
		bodies:       make(map[physics.BodyID]donburi.Entity),
		scores:       NewScoreboard(),
		status:       netconfig.RoomWaiting,
		createdAt:    now,
		lastActivity: now,
		timers:       make(map[int]Timer),
		hooks:        hooks,
	}
	log.Printf("[room] %s: created with %d platforms", id, len(layout.Platforms))
	return r
}

// Join adds a player at the spawn point and sends it the welcome. The first
// round starts as soon as the room holds enough players.
func (r *Room) Join(id, name, color string, conn Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed.Load() || r.closed.Load() {
		return ErrRoomClosed
	}
	if _, ok := r.players[id]; ok {
		return fmt.Errorf("join %s: %w", id, ErrAlreadyJoined)
	}

	r.spawnPlayerLocked(id, name, color, conn)
	r.scores.Add(id)
	r.lastActivity = r.hooks.now()

	r.sendLocked(conn, messages.Welcome{
		ID:       id,
		Map:      r.layout.Clone().Platforms,
		Round:    r.round,
		TickRate: arena.TickRate,
		Spawn:    r.layout.Spawn,
	})
	log.Printf("[room] %s: player %s joined (%d players)", r.ID, id, len(r.players))

	if len(r.players) >= r.rules.MinPlayers && r.status == netconfig.RoomWaiting {
		r.startRoundLocked()
	}
	return nil
}

// Leave removes a player and its body. The round outcome is left to the
// next tick.
func (r *Room) Leave(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed.Load() {
		return
	}
	if r.removePlayerLocked(id) {
		r.lastActivity = r.hooks.now()
		log.Printf("[room] %s: player %s left (%d players)", r.ID, id, len(r.players))
	}
}

// PushInput queues an input for the next tick. It reports false when the
// player is not in the room.
func (r *Room) PushInput(id string, in arena.Input) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entryLocked(id)
	if !ok {
		return false
	}
	Inputs.Get(entry).Push(in)
	r.lastActivity = r.hooks.now()
	return true
}

// Tick advances a playing room by one frame: inputs, physics, deaths, round
// outcome and the snapshot broadcast.
func (r *Room) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed.Load() || r.status != netconfig.RoomPlaying {
		return
	}

	r.stepPhysicsLocked()
	r.markDeathsLocked()

	if winner, over := r.roundOutcomeLocked(); over {
		r.endRoundLocked(winner)
	}
	if r.status != netconfig.RoomEnded {
		snap := r.snapshotLocked()
		r.broadcastLocked(&snap)
	}
}

// Snapshot returns the room's current authoritative state.
func (r *Room) Snapshot() messages.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() messages.Snapshot {
	snap := messages.Snapshot{
		Players: make([]messages.PlayerState, 0, len(r.order)),
		Scores:  r.scores.Snapshot(),
		Round:   r.round,
	}
	for _, id := range r.order {
		entry, _ := r.entryLocked(id)
		pd := Player.Get(entry)
		av := Avatar.Get(entry)
		st, _ := r.world.State(av.Body)
		snap.Players = append(snap.Players, messages.PlayerState{
			ID:                 id,
			X:                  st.X,
			Y:                  st.Y,
			VX:                 st.VX,
			VY:                 st.VY,
			Alive:              av.Alive,
			Score:              r.scores.Score(id),
			IsRigid:            av.Rigid,
			LastProcessedInput: av.LastInput,
			Name:               pd.Name,
			Color:              pd.Color,
		})
	}
	return snap
}

func (r *Room) broadcastLocked(m messages.Message) {
	for _, id := range r.order {
		entry, _ := r.entryLocked(id)
		r.sendLocked(Player.Get(entry).Conn, m)
	}
}

// sendLocked delivers best effort; a full or closed connection only loses
// this message.
func (r *Room) sendLocked(conn Conn, m messages.Message) {
	if conn == nil {
		return
	}
	if err := conn.Send(m); err != nil && !errors.Is(err, ErrSessionClosed) {
		log.Printf("[room] %s: send %s: %v", r.ID, m.MessageType(), err)
	}
}

// Status reports the round state.
func (r *Room) Status() netconfig.RoomStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Round reports the round counter.
func (r *Room) Round() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round
}

// PlayerCount reports the number of connected players.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return playerQuery.Count(r.ecs)
}

// Scores returns a copy of the score table.
func (r *Room) Scores() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scores.Snapshot()
}

// Closed reports whether the room no longer accepts players.
func (r *Room) Closed() bool {
	return r.closed.Load() || r.destroyed.Load()
}

// Destroyed reports whether the room has been torn down.
func (r *Room) Destroyed() bool {
	return r.destroyed.Load()
}
