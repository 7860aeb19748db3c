// Package bot drives headless arena clients: it turns the latest snapshot
// into held keys the same way a player would press them.
package bot

import (
	"math"

	"github.com/automoto/bouncerz-mp/config"
	"github.com/automoto/bouncerz-mp/shared/arena"
	"github.com/automoto/bouncerz-mp/shared/leveldata"
	"github.com/automoto/bouncerz-mp/shared/messages"
)

// Brain decides a bot's keys. It re-plans every ReactionDelay frames and
// holds its last decision in between.
type Brain struct {
	cfg config.BotDifficultyConfig

	// Horizontal extent of the layout's platforms.
	minX, maxX float64
	centerX    float64

	timer    int
	keys     arena.Keys
	targetID string
}

func NewBrain(difficulty config.BotDifficulty, layout leveldata.Layout) *Brain {
	b := &Brain{
		cfg:  config.Bot.Difficulties[difficulty],
		minX: math.Inf(1),
		maxX: math.Inf(-1),
	}
	for _, p := range layout.Platforms {
		b.minX = math.Min(b.minX, p.X-p.W)
		b.maxX = math.Max(b.maxX, p.X+p.W)
	}
	if len(layout.Platforms) == 0 {
		b.minX, b.maxX = layout.Spawn.X, layout.Spawn.X
	}
	b.centerX = (b.minX + b.maxX) / 2
	return b
}

// Target returns the id of the player the bot is chasing, if any.
func (b *Brain) Target() string {
	return b.targetID
}

// Decide returns the keys to hold this frame. x and y are the bot's own
// predicted position; everyone else comes from the snapshot.
func (b *Brain) Decide(selfID string, x, y float64, snap *messages.Snapshot) arena.Keys {
	if b.timer > 0 {
		b.timer--
		return b.keys
	}
	b.timer = b.cfg.ReactionDelay

	keys := arena.Keys{}
	target, dist := b.nearestTarget(selfID, x, y, snap)
	goalX := b.centerX
	if target != nil {
		b.targetID = target.ID
		goalX = target.X
		keys.Jump = target.Y < y-b.cfg.JumpHeight
		keys.Rigid = dist < b.cfg.RigidRange
	} else {
		b.targetID = ""
	}

	switch {
	case goalX < x-1:
		keys.Left = true
	case goalX > x+1:
		keys.Right = true
	}

	// Stay on the map.
	if x < b.minX+b.cfg.EdgeMargin {
		keys.Left, keys.Right = false, true
	} else if x > b.maxX-b.cfg.EdgeMargin {
		keys.Left, keys.Right = true, false
	}

	b.keys = keys
	return keys
}

func (b *Brain) nearestTarget(selfID string, x, y float64, snap *messages.Snapshot) (*messages.PlayerState, float64) {
	if snap == nil {
		return nil, math.MaxFloat64
	}
	var nearest *messages.PlayerState
	nearestDist := math.MaxFloat64
	for i := range snap.Players {
		p := &snap.Players[i]
		// Skip self
		if p.ID == selfID {
			continue
		}
		// Skip dead players
		if !p.Alive {
			continue
		}
		if math.Abs(p.X-x) > b.cfg.ChaseRange {
			continue
		}

		dist := distance(x, y, p.X, p.Y)
		if dist < nearestDist {
			nearestDist = dist
			nearest = p
		}
	}
	return nearest, nearestDist
}

func distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}
