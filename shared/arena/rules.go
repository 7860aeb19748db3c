package arena

import (
	"github.com/automoto/bouncerz-mp/shared/gamemath"
	"github.com/automoto/bouncerz-mp/shared/physics"
	"github.com/kvartborg/vector"
)

// ApplyInput pushes an avatar's body according to one input sample. Lateral
// force is applied while a direction is held; the jump impulse only fires
// when the avatar can jump and consumes that right. Rigid follows the held
// key.
func ApplyInput(w *physics.World, a *Avatar, keys Keys) {
	if keys.Left {
		w.ApplyForce(a.Body, -MoveForce, 0)
	}
	if keys.Right {
		w.ApplyForce(a.Body, MoveForce, 0)
	}
	if keys.Jump && a.CanJump {
		w.ApplyForce(a.Body, 0, -JumpForce)
		a.CanJump = false
	}
	a.Rigid = keys.Rigid
}

// DesiredMass is the body mass for the given rigid state.
func DesiredMass(rigid bool) float64 {
	if rigid {
		return RigidMass
	}
	return NormalMass
}

// SyncMass updates the body mass when it no longer matches the rigid state.
// It reports whether the mass changed.
func SyncMass(w *physics.World, a *Avatar) bool {
	want := DesiredMass(a.Rigid)
	if w.Mass(a.Body) == want {
		return false
	}
	w.SetMass(a.Body, want)
	return true
}

// Impact is a player-vs-player hit and the forces it produces.
type Impact struct {
	A, B physics.BodyID

	// Force components applied to A; B receives the opposite direction
	// scaled by its own magnitude.
	DirX, DirY     float64
	ForceA, ForceB float64
}

// Events are the rule facts derived from one physics step.
type Events struct {
	Landed  []physics.BodyID
	Impacts []Impact
}

// ResolveCollisions turns collision-start contacts into landings and impacts.
// It does not touch the world; call Apply to act on the result.
func ResolveCollisions(contacts []physics.Contact, lookup AvatarLookup) Events {
	var ev Events
	for _, c := range contacts {
		a, aok := lookup(c.A)
		b, bok := lookup(c.B)

		if aok && a.Alive && c.StateB.Static && c.StateA.Y < c.StateB.Y {
			ev.Landed = append(ev.Landed, c.A)
		}
		if bok && b.Alive && c.StateA.Static && c.StateB.Y < c.StateA.Y {
			ev.Landed = append(ev.Landed, c.B)
		}

		if !aok || !bok || !a.Alive || !b.Alive {
			continue
		}
		rel := vector.Vector{c.StateA.VX - c.StateB.VX, c.StateA.VY - c.StateB.VY}
		if rel.Magnitude() <= ImpactThreshold {
			continue
		}
		ev.Impacts = append(ev.Impacts, impactBetween(c.A, c.B, a, b, rel))
	}
	return ev
}

func impactBetween(idA, idB physics.BodyID, a, b *Avatar, rel vector.Vector) Impact {
	forceA, forceB := ImpactForce, ImpactForce
	if a.Rigid {
		forceA *= RigidAttackMultiplier
		forceB *= RigidDefenseMultiplier
	}
	if b.Rigid {
		forceB *= RigidAttackMultiplier
		forceA *= RigidDefenseMultiplier
	}
	return Impact{
		A:      idA,
		B:      idB,
		DirX:   gamemath.Direction(rel.X()),
		DirY:   gamemath.Direction(rel.Y()),
		ForceA: forceA,
		ForceB: forceB,
	}
}

// Apply acts on the events: landed avatars may jump again and impact forces
// are queued on both bodies for the next step.
func (ev Events) Apply(w *physics.World, lookup AvatarLookup) {
	for _, id := range ev.Landed {
		if a, ok := lookup(id); ok {
			a.CanJump = true
		}
	}
	for _, hit := range ev.Impacts {
		w.ApplyForce(hit.A, hit.DirX*hit.ForceA, hit.DirY*hit.ForceA)
		w.ApplyForce(hit.B, -hit.DirX*hit.ForceB, -hit.DirY*hit.ForceB)
	}
}
