package core

import (
	"log"

	"github.com/automoto/bouncerz-mp/shared/arena"
)

// stepPhysicsLocked applies every queued input, matches masses to rigid
// mode, steps the world once and acts on the resulting collisions.
func (r *Room) stepPhysicsLocked() {
	for _, id := range r.order {
		entry, ok := r.entryLocked(id)
		if !ok {
			continue
		}
		av := Avatar.Get(entry)
		for _, in := range Inputs.Get(entry).Drain() {
			// Inputs arriving after a newer one was applied are stale.
			if in.Timestamp <= av.LastInput {
				continue
			}
			arena.ApplyInput(r.world, av, in.Keys)
			av.LastInput = in.Timestamp
		}
	}

	for _, id := range r.order {
		if entry, ok := r.entryLocked(id); ok {
			arena.SyncMass(r.world, Avatar.Get(entry))
		}
	}

	contacts := r.world.Step()
	arena.ResolveCollisions(contacts, r.avatarForBody).Apply(r.world, r.avatarForBody)
}

// markDeathsLocked takes players that fell out of the arena out of the round.
func (r *Room) markDeathsLocked() {
	for _, id := range r.order {
		entry, ok := r.entryLocked(id)
		if !ok {
			continue
		}
		av := Avatar.Get(entry)
		if !av.Alive {
			continue
		}
		if st, ok := r.world.State(av.Body); ok && arena.Dead(st) {
			av.Alive = false
			log.Printf("[room] %s: player %s fell (round %d)", r.ID, id, r.round)
		}
	}
}

// resetPlayersLocked puts every player back at the spawn point for a new
// round.
func (r *Room) resetPlayersLocked() {
	spawn := r.layout.Spawn
	for _, id := range r.order {
		entry, ok := r.entryLocked(id)
		if !ok {
			continue
		}
		av := Avatar.Get(entry)
		av.Reset()
		r.world.SetPosition(av.Body, spawn.X, spawn.Y)
		r.world.SetVelocity(av.Body, 0, 0)
		arena.SyncMass(r.world, av)
		Inputs.Get(entry).Clear()
	}
}
