package core

import (
	"log"
	"time"

	"github.com/automoto/bouncerz-mp/shared/messages"
	"github.com/automoto/bouncerz-mp/shared/netconfig"
)

// roundOutcomeLocked decides whether the round is over: a single survivor
// wins, no survivors is a draw, anything else keeps playing.
func (r *Room) roundOutcomeLocked() (winner string, over bool) {
	alive := 0
	for _, id := range r.order {
		entry, ok := r.entryLocked(id)
		if !ok || !Avatar.Get(entry).Alive {
			continue
		}
		alive++
		winner = id
	}
	switch alive {
	case 0:
		return netconfig.DrawWinner, true
	case 1:
		return winner, true
	default:
		return "", false
	}
}

// startRoundLocked begins the next round. With too few players left the
// room goes back to waiting and the round counter is untouched.
func (r *Room) startRoundLocked() {
	if len(r.players) < r.rules.MinPlayers {
		r.status = netconfig.RoomWaiting
		log.Printf("[room] %s: %d players, waiting", r.ID, len(r.players))
		return
	}

	r.round++
	r.resetPlayersLocked()
	r.status = netconfig.RoomPlaying
	log.Printf("[room] %s: round %d started", r.ID, r.round)

	r.broadcastLocked(messages.Start{Round: r.round})
}

// endRoundLocked settles a round and schedules what follows it.
func (r *Room) endRoundLocked(winner string) {
	r.status = netconfig.RoomPaused
	log.Printf("[room] %s: round %d won by %s", r.ID, r.round, winner)

	r.broadcastLocked(messages.RoundWinner{Round: r.round, Winner: winner})

	if winner != netconfig.DrawWinner {
		score := r.scores.Award(winner)
		r.broadcastLocked(messages.ScoreUpdate{Scores: r.scores.Snapshot()})

		if score >= r.rules.WinningScore {
			r.finishMatchLocked(winner, "")
			return
		}
	}

	if r.round >= r.rules.MaxRounds {
		leader, _ := r.scores.Leader()
		r.finishMatchLocked(leader, netconfig.ReasonMaxRounds)
		return
	}

	r.scheduleLocked(r.rules.NextRoundDelay, func() {
		if !r.hooks.live(r) {
			return
		}
		r.startRoundLocked()
	})
}

// finishMatchLocked announces the match winner and tears the room down after
// the grace delay. No snapshots are sent from here on.
func (r *Room) finishMatchLocked(winner, reason string) {
	r.status = netconfig.RoomEnded
	r.closed.Store(true)
	log.Printf("[room] %s: match won by %s after %d rounds", r.ID, winner, r.round)

	r.broadcastLocked(messages.MatchWinner{
		Winner: winner,
		Scores: r.scores.Snapshot(),
		Reason: reason,
	})

	r.scheduleLocked(r.rules.MatchEndDelay, func() {
		r.destroyLocked("match over")
		r.hooks.unregister(r)
	})
}

// scheduleLocked runs fn under the room lock after d, unless the room has
// been destroyed by then.
func (r *Room) scheduleLocked(d time.Duration, fn func()) {
	r.nextTimer++
	key := r.nextTimer
	r.timers[key] = r.hooks.after(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		delete(r.timers, key)
		if r.destroyed.Load() {
			return
		}
		fn()
	})
}

// destroy tears the room down. It is safe to call more than once.
func (r *Room) destroy(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyLocked(reason)
}

func (r *Room) destroyLocked(reason string) {
	if r.destroyed.Swap(true) {
		return
	}
	r.closed.Store(true)

	for key, t := range r.timers {
		t.Stop()
		delete(r.timers, key)
	}
	for _, id := range append([]string(nil), r.order...) {
		r.removePlayerLocked(id)
	}
	r.world.Clear()
	r.status = netconfig.RoomEnded
	log.Printf("[room] %s: destroyed (%s)", r.ID, reason)
}

// expire destroys the room when it is empty and either idle past the
// inactivity limit or older than the retention age.
func (r *Room) expire(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed.Load() || len(r.players) > 0 {
		return false
	}
	idle := now.Sub(r.lastActivity) > r.rules.InactivityLimit
	old := now.Sub(r.createdAt) > r.rules.RetentionAge
	if !idle && !old {
		return false
	}
	if idle {
		r.destroyLocked("idle")
	} else {
		r.destroyLocked("expired")
	}
	return true
}
