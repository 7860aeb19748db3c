// Package arena holds the game rules that run identically on the server and in
// the client predictor: how inputs move a player's body, how mass follows
// rigid mode, and what the collisions of one physics step mean for the match.
package arena

// Movement and impact tuning. Forces use the physics package units
// (velocity change = F / mass * step²).
const (
	TickRate = 60

	Gravity      = 0.6
	GravityScale = 0.001

	PlayerRadius      = 20.0
	PlayerRestitution = 0.3
	PlayerFriction    = 0.05
	PlayerFrictionAir = 0.01

	MoveForce = 0.0005
	JumpForce = 0.02

	NormalMass = 1.0
	RigidMass  = 10.0

	// Minimum relative speed for a player-vs-player hit.
	ImpactThreshold = 6.0
	ImpactForce     = 0.01

	// A rigid player hits harder and is pushed less.
	RigidAttackMultiplier  = 2.0
	RigidDefenseMultiplier = 0.5

	// Bodies below this line are out of the round.
	DeathY = 600.0
)

// StepMillis is the length of one tick in milliseconds.
const StepMillis = 1000.0 / TickRate
