package arena

import (
	"math"
	"testing"

	"github.com/automoto/bouncerz-mp/shared/leveldata"
	"github.com/automoto/bouncerz-mp/shared/physics"
)

func emptyWorld() *physics.World {
	cfg := PhysicsConfig()
	cfg.Gravity = 0
	return physics.NewWorld(cfg)
}

func TestApplyInputJumpNeedsCanJump(t *testing.T) {
	w := emptyWorld()
	av := &Avatar{Body: SpawnBody(w, 0, 0), Alive: true}

	ApplyInput(w, av, Keys{Jump: true})
	w.Step()
	if st, _ := w.State(av.Body); st.VY != 0 {
		t.Fatalf("jumped without canJump: vy=%v", st.VY)
	}

	av.CanJump = true
	ApplyInput(w, av, Keys{Jump: true})
	if av.CanJump {
		t.Error("jump did not consume canJump")
	}
	w.Step()
	st, _ := w.State(av.Body)
	want := -JumpForce / NormalMass * StepMillis * StepMillis * (1 - PlayerFrictionAir)
	if math.Abs(st.VY-want) > 1e-9 {
		t.Errorf("vy after jump = %v, want %v", st.VY, want)
	}
}

func TestApplyInputRigidFollowsKey(t *testing.T) {
	w := emptyWorld()
	av := &Avatar{Body: SpawnBody(w, 0, 0), Alive: true}

	ApplyInput(w, av, Keys{Rigid: true})
	if !av.Rigid {
		t.Fatal("rigid not set while held")
	}
	if !SyncMass(w, av) || w.Mass(av.Body) != RigidMass {
		t.Fatalf("mass = %v, want %v", w.Mass(av.Body), RigidMass)
	}
	if SyncMass(w, av) {
		t.Error("SyncMass changed an already matching mass")
	}

	ApplyInput(w, av, Keys{})
	if av.Rigid {
		t.Fatal("rigid latched after release")
	}
	SyncMass(w, av)
	if w.Mass(av.Body) != NormalMass {
		t.Errorf("mass = %v, want %v", w.Mass(av.Body), NormalMass)
	}
}

func TestApplyInputLateral(t *testing.T) {
	w := emptyWorld()
	av := &Avatar{Body: SpawnBody(w, 0, 0), Alive: true}

	ApplyInput(w, av, Keys{Left: true})
	w.Step()
	st, _ := w.State(av.Body)
	if st.VX >= 0 {
		t.Errorf("left input gave vx=%v", st.VX)
	}
}

func TestResolveCollisionsLanding(t *testing.T) {
	player := &Avatar{Body: 2, Alive: true}
	lookup := func(id physics.BodyID) (*Avatar, bool) {
		return player, id == 2
	}

	tests := []struct {
		name    string
		contact physics.Contact
		landed  bool
	}{
		{
			name: "above static",
			contact: physics.Contact{A: 1, B: 2,
				StateA: physics.BodyState{Y: 290, Static: true},
				StateB: physics.BodyState{Y: 262}},
			landed: true,
		},
		{
			name: "below static",
			contact: physics.Contact{A: 1, B: 2,
				StateA: physics.BodyState{Y: 100, Static: true},
				StateB: physics.BodyState{Y: 125}},
			landed: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := ResolveCollisions([]physics.Contact{tt.contact}, lookup)
			if got := len(ev.Landed) == 1; got != tt.landed {
				t.Errorf("landed = %v, want %v", got, tt.landed)
			}
			if len(ev.Impacts) != 0 {
				t.Errorf("unexpected impacts %v", ev.Impacts)
			}
		})
	}

	player.Alive = false
	ev := ResolveCollisions([]physics.Contact{tests[0].contact}, lookup)
	if len(ev.Landed) != 0 {
		t.Error("dead player landed")
	}
}

func headOn(a, b *Avatar) ([]physics.Contact, AvatarLookup) {
	contacts := []physics.Contact{{
		A: a.Body, B: b.Body,
		StateA: physics.BodyState{X: -20, VX: 5},
		StateB: physics.BodyState{X: 20, VX: -5},
	}}
	lookup := func(id physics.BodyID) (*Avatar, bool) {
		switch id {
		case a.Body:
			return a, true
		case b.Body:
			return b, true
		}
		return nil, false
	}
	return contacts, lookup
}

func TestRigidImpactScaling(t *testing.T) {
	tests := []struct {
		name           string
		rigidA, rigidB bool
		forceA, forceB float64
	}{
		{"symmetric", false, false, ImpactForce, ImpactForce},
		{"A rigid", true, false, ImpactForce * RigidAttackMultiplier, ImpactForce * RigidDefenseMultiplier},
		{"B rigid", false, true, ImpactForce * RigidDefenseMultiplier, ImpactForce * RigidAttackMultiplier},
		{"both rigid", true, true, ImpactForce, ImpactForce},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Avatar{Body: 1, Alive: true, Rigid: tt.rigidA}
			b := &Avatar{Body: 2, Alive: true, Rigid: tt.rigidB}
			contacts, lookup := headOn(a, b)

			ev := ResolveCollisions(contacts, lookup)
			if len(ev.Impacts) != 1 {
				t.Fatalf("impacts = %d, want 1", len(ev.Impacts))
			}
			hit := ev.Impacts[0]
			if math.Abs(hit.ForceA-tt.forceA) > 1e-12 || math.Abs(hit.ForceB-tt.forceB) > 1e-12 {
				t.Errorf("forces = %v/%v, want %v/%v", hit.ForceA, hit.ForceB, tt.forceA, tt.forceB)
			}
			if hit.DirX != 1 || hit.DirY != -1 {
				t.Errorf("direction = (%v,%v), want (1,-1)", hit.DirX, hit.DirY)
			}
		})
	}
}

func TestGroundedHeadOnImpact(t *testing.T) {
	tests := []struct {
		name           string
		rigidA         bool
		forceA, forceB float64
	}{
		{"both normal", false, ImpactForce, ImpactForce},
		{"A rigid", true, ImpactForce * RigidAttackMultiplier, ImpactForce * RigidDefenseMultiplier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld(leveldata.Default())
			a := &Avatar{Body: SpawnBody(w, -300, 260), Alive: true}
			b := &Avatar{Body: SpawnBody(w, 300, 260), Alive: true}
			lookup := func(id physics.BodyID) (*Avatar, bool) {
				switch id {
				case a.Body:
					return a, true
				case b.Body:
					return b, true
				}
				return nil, false
			}

			for i := 0; i < 600; i++ {
				ApplyInput(w, a, Keys{Right: true, Rigid: tt.rigidA})
				ApplyInput(w, b, Keys{Left: true})
				SyncMass(w, a)
				SyncMass(w, b)

				ev := ResolveCollisions(w.Step(), lookup)
				if len(ev.Impacts) == 0 {
					ev.Apply(w, lookup)
					continue
				}
				hit := ev.Impacts[0]
				if hit.A != a.Body || hit.B != b.Body || hit.DirX != 1 {
					t.Fatalf("impact = %+v", hit)
				}
				if math.Abs(hit.ForceA-tt.forceA) > 1e-12 || math.Abs(hit.ForceB-tt.forceB) > 1e-12 {
					t.Errorf("forces = %v/%v, want %v/%v", hit.ForceA, hit.ForceB, tt.forceA, tt.forceB)
				}
				return
			}
			sa, _ := w.State(a.Body)
			sb, _ := w.State(b.Body)
			t.Fatalf("no impact while running into each other: a=%+v b=%+v", sa, sb)
		})
	}
}

func TestImpactBelowThresholdOrDead(t *testing.T) {
	a := &Avatar{Body: 1, Alive: true}
	b := &Avatar{Body: 2, Alive: true}
	contacts, lookup := headOn(a, b)

	contacts[0].StateA.VX = 2
	contacts[0].StateB.VX = -2
	if ev := ResolveCollisions(contacts, lookup); len(ev.Impacts) != 0 {
		t.Error("slow contact produced an impact")
	}

	contacts, _ = headOn(a, b)
	b.Alive = false
	if ev := ResolveCollisions(contacts, lookup); len(ev.Impacts) != 0 {
		t.Error("impact with a dead player")
	}
}

func TestEventsApply(t *testing.T) {
	w := emptyWorld()
	a := &Avatar{Body: SpawnBody(w, -500, 0), Alive: true, Rigid: true}
	b := &Avatar{Body: SpawnBody(w, 500, 0), Alive: true}
	SyncMass(w, a)
	lookup := func(id physics.BodyID) (*Avatar, bool) {
		switch id {
		case a.Body:
			return a, true
		case b.Body:
			return b, true
		}
		return nil, false
	}

	ev := Events{
		Landed:  []physics.BodyID{b.Body},
		Impacts: []Impact{{A: a.Body, B: b.Body, DirX: 1, DirY: -1, ForceA: 0.02, ForceB: 0.005}},
	}
	ev.Apply(w, lookup)
	w.Step()

	if !b.CanJump {
		t.Error("landed avatar cannot jump")
	}
	dt2 := StepMillis * StepMillis * (1 - PlayerFrictionAir)
	sa, _ := w.State(a.Body)
	sb, _ := w.State(b.Body)
	if want := 0.02 / RigidMass * dt2; math.Abs(sa.VX-want) > 1e-9 {
		t.Errorf("a.vx = %v, want %v", sa.VX, want)
	}
	if want := -0.005 / NormalMass * dt2; math.Abs(sb.VX-want) > 1e-9 {
		t.Errorf("b.vx = %v, want %v", sb.VX, want)
	}
}

func TestStepDeterministic(t *testing.T) {
	run := func() physics.BodyState {
		w := NewWorld(leveldata.Default())
		av := &Avatar{Body: SpawnBody(w, 0, 0), Alive: true}
		var st physics.BodyState
		for i := 0; i < 240; i++ {
			keys := Keys{Right: i%50 < 25, Jump: i%40 == 0, Rigid: i%90 > 60}
			st = Step(w, av, Input{Timestamp: float64(i + 1), Keys: keys})
		}
		return st
	}

	first, second := run(), run()
	if first != second {
		t.Errorf("replays diverged:\n%+v\n%+v", first, second)
	}
}

func TestStepLandsAndEnablesJump(t *testing.T) {
	w := NewWorld(leveldata.Default())
	av := &Avatar{Body: SpawnBody(w, 0, 0), Alive: true}

	for i := 0; i < 120 && !av.CanJump; i++ {
		Step(w, av, Input{Timestamp: float64(i + 1)})
	}
	if !av.CanJump {
		t.Fatal("avatar never landed on the middle platform")
	}
	if av.LastInput == 0 {
		t.Error("LastInput not recorded")
	}
	st, _ := w.State(av.Body)
	if Dead(st) {
		t.Errorf("avatar dead at y=%v", st.Y)
	}
}
