package arena

import "github.com/automoto/bouncerz-mp/shared/physics"

// Keys is the held state of the four game actions.
type Keys struct {
	Left  bool
	Right bool
	Jump  bool
	Rigid bool
}

// Input is one timestamped sample of the keys. Timestamps are client clock
// milliseconds and only comparable within one client.
type Input struct {
	Timestamp float64
	Keys      Keys
}

// Avatar is the rule state of one player body.
type Avatar struct {
	Body      physics.BodyID
	CanJump   bool
	Alive     bool
	Rigid     bool
	LastInput float64
}

// Reset puts an avatar back into its start-of-round state.
func (a *Avatar) Reset() {
	a.CanJump = false
	a.Alive = true
	a.Rigid = false
}

// AvatarLookup resolves a body to its avatar.
type AvatarLookup func(physics.BodyID) (*Avatar, bool)
