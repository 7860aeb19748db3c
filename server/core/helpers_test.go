package core

import (
	"sync"
	"testing"
	"time"

	"github.com/automoto/bouncerz-mp/config"
	"github.com/automoto/bouncerz-mp/shared/leveldata"
	"github.com/automoto/bouncerz-mp/shared/messages"
)

// fakeConn records everything a room sends to one player.
type fakeConn struct {
	mu     sync.Mutex
	msgs   []messages.Message
	closed bool
}

func (c *fakeConn) Send(m messages.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrSessionClosed
	}
	c.msgs = append(c.msgs, m)
	return nil
}

func (c *fakeConn) count(typ string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.msgs {
		if m.MessageType() == typ {
			n++
		}
	}
	return n
}

func (c *fakeConn) last(typ string) messages.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.msgs) - 1; i >= 0; i-- {
		if c.msgs[i].MessageType() == typ {
			return c.msgs[i]
		}
	}
	return nil
}

func (c *fakeConn) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.msgs))
	for _, m := range c.msgs {
		out = append(out, m.MessageType())
	}
	return out
}

// manualClock replaces time.Now and time.AfterFunc so deferred room work
// only runs when a test fires it.
type manualClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*manualTimer
}

type manualTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *manualClock) after(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{delay: d, fn: fn}
	c.pending = append(c.pending, t)
	return t
}

// Fire runs every timer scheduled so far that has not been stopped.
func (c *manualClock) Fire() int {
	c.mu.Lock()
	due := c.pending
	c.pending = nil
	c.mu.Unlock()

	n := 0
	for _, t := range due {
		if t.stopped || t.fired {
			continue
		}
		t.fired = true
		t.fn()
		n++
	}
	return n
}

func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.pending {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func testRules() config.MatchConfig {
	rules := config.Match
	rules.MaxQueuedInputs = 64
	return rules
}

func newTestManager(rules config.MatchConfig) (*Manager, *manualClock) {
	clock := newManualClock()
	m := NewManager(leveldata.Default(), rules)
	m.now = clock.Now
	m.after = clock.after
	return m, clock
}

// joinN adds players p1..pn to the room and returns their connections.
func joinN(t *testing.T, r *Room, n int) []*fakeConn {
	t.Helper()
	conns := make([]*fakeConn, n)
	for i := range conns {
		conns[i] = &fakeConn{}
		if err := r.Join(playerID(i), "", "", conns[i]); err != nil {
			t.Fatalf("join %s: %v", playerID(i), err)
		}
	}
	return conns
}

func playerID(i int) string {
	return "p" + string(rune('1'+i))
}

// dropPlayer moves a player's body below the death line.
func dropPlayer(t *testing.T, r *Room, id string) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entryLocked(id)
	if !ok {
		t.Fatalf("no player %s", id)
	}
	r.world.SetPosition(Avatar.Get(entry).Body, 0, 700)
}
