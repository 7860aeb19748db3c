package core

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/automoto/bouncerz-mp/config"
	"github.com/automoto/bouncerz-mp/shared/leveldata"
)

// Manager is the process-wide registry of rooms. Its lock only guards the
// map: it is never held while taking a room lock, so rooms may call back into
// the manager while holding their own.
type Manager struct {
	layout leveldata.Layout
	rules  config.MatchConfig

	mu    sync.Mutex
	rooms map[string]*Room

	now   func() time.Time
	after afterFunc
}

// NewManager creates an empty registry. Every room it creates uses layout.
func NewManager(layout leveldata.Layout, rules config.MatchConfig) *Manager {
	return &Manager{
		layout: layout.Clone(),
		rules:  rules,
		rooms:  make(map[string]*Room),
		now:    time.Now,
		after:  realAfter,
	}
}

// GetOrCreate returns the open room for id, creating a fresh one when there
// is none or the existing one has finished its match.
func (m *Manager) GetOrCreate(id string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.rooms[id]; ok && !r.Closed() {
		return r
	}
	r := newRoom(id, m.layout, m.rules, roomHooks{
		now:        m.now,
		after:      m.after,
		live:       m.isLive,
		unregister: m.unregister,
	})
	m.rooms[id] = r
	return r
}

// Get returns the registered room for id, or nil.
func (m *Manager) Get(id string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[id]
}

// Destroy stops and removes a room. Unknown ids are ignored.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	r, ok := m.rooms[id]
	delete(m.rooms, id)
	m.mu.Unlock()

	if ok {
		r.destroy("removed")
	}
}

// Sweep destroys empty rooms that have been idle too long or exist past the
// retention age. It returns how many rooms were removed.
func (m *Manager) Sweep(now time.Time) int {
	removed := 0
	for _, r := range m.Rooms() {
		if r.expire(now) {
			m.unregister(r)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[manager] swept %d rooms", removed)
	}
	return removed
}

// RunSweeper sweeps once immediately and then every interval until ctx is
// done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	m.Sweep(m.now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(m.now())
		}
	}
}

// Rooms returns the registered rooms sorted by id.
func (m *Manager) Rooms() []*Room {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.Unlock()

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}

// Stats counts rooms and connected players.
type Stats struct {
	Rooms   int `json:"rooms"`
	Players int `json:"players"`
}

func (m *Manager) Stats() Stats {
	rooms := m.Rooms()
	st := Stats{Rooms: len(rooms)}
	for _, r := range rooms {
		st.Players += r.PlayerCount()
	}
	return st
}

// Close destroys every room.
func (m *Manager) Close() {
	for _, r := range m.Rooms() {
		m.Destroy(r.ID)
	}
}

func (m *Manager) isLive(r *Room) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[r.ID] == r
}

// unregister drops r from the registry if it is still the entry for its id.
func (m *Manager) unregister(r *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rooms[r.ID] == r {
		delete(m.rooms, r.ID)
	}
}
