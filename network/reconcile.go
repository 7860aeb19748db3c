package network

import (
	"math"
	"time"

	"github.com/automoto/bouncerz-mp/config"
	"github.com/automoto/bouncerz-mp/shared/arena"
	"github.com/automoto/bouncerz-mp/shared/gamemath"
	"github.com/automoto/bouncerz-mp/shared/leveldata"
	"github.com/automoto/bouncerz-mp/shared/messages"
	"github.com/automoto/bouncerz-mp/shared/physics"
)

// CorrectionKind says what a reconciliation did to the local body.
type CorrectionKind int

const (
	CorrectionMissing   CorrectionKind = iota // Snapshot had no entry for us
	CorrectionIdle                            // Every input acknowledged, nothing to replay
	CorrectionThrottled                       // Too soon after the last reconciliation
	CorrectionAccepted                        // Prediction within the blend threshold
	CorrectionBlended                         // Moved part of the way to the replay
	CorrectionSnapped                         // Hard set to the replay
)

var correctionNames = map[CorrectionKind]string{
	CorrectionMissing:   "missing",
	CorrectionIdle:      "idle",
	CorrectionThrottled: "throttled",
	CorrectionAccepted:  "accepted",
	CorrectionBlended:   "blended",
	CorrectionSnapped:   "snapped",
}

func (k CorrectionKind) String() string {
	if name, ok := correctionNames[k]; ok {
		return name
	}
	return "unknown"
}

// Correction reports the outcome of one Reconcile call.
type Correction struct {
	Kind       CorrectionKind
	Divergence float64 // Predicted vs replayed position
	Replayed   int     // Inputs re-simulated
	PredError  float64 // Predicted vs server position at the acknowledged input
}

// Predictor runs the local player's shadow simulation. It is driven from a
// single goroutine (the client's frame loop) and is not synchronized.
type Predictor struct {
	playerID string
	layout   leveldata.Layout
	cfg      config.ClientConfig

	world   *physics.World
	avatar  arena.Avatar
	history *PredictionBuffer

	lastTimestamp float64
	lastReconcile time.Time
}

// NewPredictor builds a shadow world from the welcome layout with the local
// body at the spawn point.
func NewPredictor(playerID string, layout leveldata.Layout, cfg config.ClientConfig) *Predictor {
	p := &Predictor{
		playerID: playerID,
		layout:   layout.Clone(),
		cfg:      cfg,
		world:    arena.NewWorld(layout),
		history:  NewPredictionBuffer(cfg.HistorySize),
	}
	p.avatar = arena.Avatar{
		Body:  arena.SpawnBody(p.world, layout.Spawn.X, layout.Spawn.Y),
		Alive: true,
	}
	return p
}

// Predict applies keys to the local body right away and records the input
// for replay. The returned message is what to send to the server. Jump is
// always sent as held; only the server decides whether it fires.
func (p *Predictor) Predict(keys arena.Keys, now time.Time) messages.Input {
	ts := float64(now.UnixNano()) / float64(time.Millisecond)
	if ts <= p.lastTimestamp {
		ts = p.lastTimestamp + 1
	}
	p.lastTimestamp = ts

	in := arena.Input{Timestamp: ts, Keys: keys}
	st := arena.Step(p.world, &p.avatar, in)
	p.history.Store(in, st.X, st.Y)

	return messages.Input{Keys: messages.KeysFrom(keys), Timestamp: ts}
}

// Reconcile merges an authoritative snapshot into the local prediction.
// Acknowledged inputs are dropped; the rest are replayed from the server's
// position in a throwaway world and the local body is snapped, blended or
// left alone depending on how far the replay ends up from it.
func (p *Predictor) Reconcile(snap *messages.Snapshot, now time.Time) Correction {
	self, ok := snap.Player(p.playerID)
	if !ok {
		return Correction{Kind: CorrectionMissing}
	}

	predErr := p.history.PredictionError(self.LastProcessedInput, self.X, self.Y)
	p.history.Acknowledge(self.LastProcessedInput)
	pending := p.history.Pending()
	if len(pending) == 0 {
		return Correction{Kind: CorrectionIdle, PredError: predErr}
	}
	if !p.lastReconcile.IsZero() && now.Sub(p.lastReconcile) < p.cfg.ReconcileInterval {
		return Correction{Kind: CorrectionThrottled, PredError: predErr}
	}
	p.lastReconcile = now

	replayed, replayAvatar := p.replay(self, pending)
	local, _ := p.world.State(p.avatar.Body)
	dist := math.Hypot(replayed.X-local.X, replayed.Y-local.Y)

	c := Correction{Divergence: dist, Replayed: len(pending), PredError: predErr}
	switch {
	case dist > p.cfg.SnapThreshold:
		p.world.SetPosition(p.avatar.Body, replayed.X, replayed.Y)
		p.world.SetVelocity(p.avatar.Body, replayed.VX, replayed.VY)
		p.avatar.CanJump = replayAvatar.CanJump
		c.Kind = CorrectionSnapped
	case dist > p.cfg.BlendThreshold:
		t := p.cfg.BlendFactor
		p.world.SetPosition(p.avatar.Body,
			gamemath.Lerp(local.X, replayed.X, t), gamemath.Lerp(local.Y, replayed.Y, t))
		p.world.SetVelocity(p.avatar.Body,
			gamemath.Lerp(local.VX, replayed.VX, t), gamemath.Lerp(local.VY, replayed.VY, t))
		c.Kind = CorrectionBlended
	default:
		c.Kind = CorrectionAccepted
	}
	return c
}

// replay re-simulates pending inputs from the authoritative state. Jump
// eligibility is rebuilt from the replay world's own collisions.
func (p *Predictor) replay(self messages.PlayerState, pending []InputRecord) (physics.BodyState, arena.Avatar) {
	w := arena.NewWorld(p.layout)
	av := arena.Avatar{
		Body:  arena.SpawnBody(w, self.X, self.Y),
		Alive: true,
		Rigid: self.IsRigid,
	}
	w.SetVelocity(av.Body, self.VX, self.VY)
	arena.SyncMass(w, &av)

	var st physics.BodyState
	for _, record := range pending {
		st = arena.Step(w, &av, record.Input)
	}
	return st, av
}

// Reset clears the history and puts the local body at x, y at rest, as at
// the start of a round.
func (p *Predictor) Reset(x, y float64) {
	p.history.Reset()
	p.avatar.Reset()
	p.world.SetPosition(p.avatar.Body, x, y)
	p.world.SetVelocity(p.avatar.Body, 0, 0)
	arena.SyncMass(p.world, &p.avatar)
	p.lastReconcile = time.Time{}
}

// Local returns the predicted state of the local body.
func (p *Predictor) Local() physics.BodyState {
	st, _ := p.world.State(p.avatar.Body)
	return st
}

// SetLocal overrides the predicted position and velocity.
func (p *Predictor) SetLocal(x, y, vx, vy float64) {
	p.world.SetPosition(p.avatar.Body, x, y)
	p.world.SetVelocity(p.avatar.Body, vx, vy)
}

// CanJump reports the locally predicted jump eligibility.
func (p *Predictor) CanJump() bool {
	return p.avatar.CanJump
}

// Pending reports how many inputs await acknowledgement.
func (p *Predictor) Pending() int {
	return p.history.Len()
}

func (p *Predictor) PlayerID() string {
	return p.playerID
}
