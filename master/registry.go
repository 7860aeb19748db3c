package main

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/automoto/bouncerz-mp/shared/directory"
	"github.com/google/uuid"
)

type serverRecord struct {
	directory.ServerInfo
	LastSeen time.Time
}

// Registry is an in-memory store of active game servers with TTL-based expiry.
type Registry struct {
	mu      sync.RWMutex
	servers map[string]*serverRecord
	ttl     time.Duration
	now     func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		servers: make(map[string]*serverRecord),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (r *Registry) Register(info directory.ServerInfo) string {
	info.ID = uuid.NewString()

	r.mu.Lock()
	r.servers[info.ID] = &serverRecord{
		ServerInfo: info,
		LastSeen:   r.now(),
	}
	r.mu.Unlock()

	return info.ID
}

// Heartbeat refreshes a server's counts. It reports false for unknown or
// expired ids so the server knows to register again.
func (r *Registry) Heartbeat(id string, rooms, players int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.servers[id]
	if !ok {
		return false
	}
	rec.LastSeen = r.now()
	rec.Rooms = rooms
	rec.Players = players
	return true
}

// listQuery narrows and orders a directory listing.
type listQuery struct {
	region  string
	version string
	sort    string
	limit   int
}

// List returns the live servers matching q. The default order is busiest
// first; SortRooms puts the least loaded servers first so new matches spread
// across the fleet.
func (r *Registry) List(q listQuery) []directory.ServerInfo {
	r.mu.RLock()
	result := make([]directory.ServerInfo, 0, len(r.servers))
	for _, rec := range r.servers {
		if q.region != "" && rec.Region != q.region {
			continue
		}
		if q.version != "" && rec.Version != q.version {
			continue
		}
		result = append(result, rec.ServerInfo)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if q.sort == directory.SortRooms {
			if a.Rooms != b.Rooms {
				return a.Rooms < b.Rooms
			}
			if a.Players != b.Players {
				return a.Players < b.Players
			}
			return a.Name < b.Name
		}
		if a.Players != b.Players {
			return a.Players > b.Players
		}
		return a.Name < b.Name
	})
	if q.limit > 0 && len(result) > q.limit {
		result = result[:q.limit]
	}
	return result
}

// Summary totals the load across every registered server.
func (r *Registry) Summary() directory.Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sum := directory.Summary{Status: "ok", Servers: len(r.servers)}
	for _, rec := range r.servers {
		sum.Rooms += rec.Rooms
		sum.Players += rec.Players
	}
	return sum
}

// Expire drops servers not seen within the TTL and returns how many.
func (r *Registry) Expire() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	n := 0
	for id, rec := range r.servers {
		if now.Sub(rec.LastSeen) >= r.ttl {
			log.Printf("[master] expired server %q (id=%s, last seen %s ago)",
				rec.Name, id, now.Sub(rec.LastSeen).Round(time.Second))
			delete(r.servers, id)
			n++
		}
	}
	return n
}

func (r *Registry) cleanupLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Expire()
		}
	}
}
