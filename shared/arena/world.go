package arena

import (
	"github.com/automoto/bouncerz-mp/shared/leveldata"
	"github.com/automoto/bouncerz-mp/shared/physics"
)

// PhysicsConfig returns the world settings used by rooms and predictors.
func PhysicsConfig() physics.Config {
	cfg := physics.DefaultConfig()
	cfg.Gravity = Gravity
	cfg.GravityScale = GravityScale
	cfg.StepMillis = StepMillis
	return cfg
}

// NewWorld builds a physics world holding the layout's static platforms.
func NewWorld(layout leveldata.Layout) *physics.World {
	w := physics.NewWorld(PhysicsConfig())
	for _, p := range layout.Platforms {
		w.AddStatic(p.X, p.Y, p.W, p.H)
	}
	return w
}

// SpawnBody adds a player body at x, y.
func SpawnBody(w *physics.World, x, y float64) physics.BodyID {
	return w.AddBody(x, y, PlayerRadius, physics.BodyOptions{
		Mass:        NormalMass,
		Restitution: PlayerRestitution,
		Friction:    PlayerFriction,
		FrictionAir: PlayerFrictionAir,
	})
}
