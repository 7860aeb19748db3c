package arena

import "github.com/automoto/bouncerz-mp/shared/physics"

// Step advances a world holding a single avatar by one input. Live prediction
// and reconciliation replay both go through here so they cannot drift apart.
func Step(w *physics.World, a *Avatar, in Input) physics.BodyState {
	ApplyInput(w, a, in.Keys)
	a.LastInput = in.Timestamp
	SyncMass(w, a)

	contacts := w.Step()
	lookup := func(id physics.BodyID) (*Avatar, bool) {
		return a, id == a.Body
	}
	ResolveCollisions(contacts, lookup).Apply(w, lookup)

	st, _ := w.State(a.Body)
	return st
}

// Dead reports whether a body has fallen out of the arena.
func Dead(st physics.BodyState) bool {
	return st.Y > DeathY
}
