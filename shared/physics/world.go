// Package physics is the small rigid-body world used by the server rooms and
// by the client predictor. Bodies are axis-aligned boxes; spatial queries go
// through a resolv.Space. A force F on mass m changes velocity by F/m·dt² per
// step, dt in milliseconds.
package physics

import (
	"math"
	"sort"

	"github.com/automoto/bouncerz-mp/shared/gamemath"
	"github.com/kvartborg/vector"
	"github.com/solarlune/resolv"
)

const (
	tagStatic  = "static"
	tagDynamic = "dynamic"

	// Bodies closer than this count as touching.
	contactSlop = 0.5

	// A bounce slower than this settles instead of rebounding.
	restingSpeed = 1.0
)

// BodyID identifies a body inside one World.
type BodyID uint32

// Config tunes a World.
type Config struct {
	Gravity      float64 // vertical gravity, downward positive
	GravityScale float64
	StepMillis   float64 // length of one step in milliseconds

	// Extent of the broadphase grid. The world origin sits at its center, so
	// bodies outside [-Width/2, Width/2] x [-Height/2, Height/2] no longer
	// collide with anything.
	Width, Height int
	CellSize      int
}

// DefaultConfig matches the arena tuning: 60 Hz steps, gravity 0.6.
func DefaultConfig() Config {
	return Config{
		Gravity:      0.6,
		GravityScale: 0.001,
		StepMillis:   1000.0 / 60.0,
		Width:        4096,
		Height:       4096,
		CellSize:     32,
	}
}

// BodyOptions describes a dynamic body's material.
type BodyOptions struct {
	Mass        float64
	Restitution float64
	Friction    float64
	FrictionAir float64
}

// BodyState is a read-only copy of a body.
type BodyState struct {
	X, Y   float64
	VX, VY float64
	Mass   float64
	HalfW  float64
	HalfH  float64
	Static bool
}

// Speed returns the magnitude of the body's velocity.
func (s BodyState) Speed() float64 {
	return vector.Vector{s.VX, s.VY}.Magnitude()
}

// Contact is a pair of bodies that started touching during a Step. States are
// captured before the pair was separated, so velocities are the impact
// velocities. A < B always.
type Contact struct {
	A, B           BodyID
	StateA, StateB BodyState
}

// Other returns the id and state of the body paired with id.
func (c Contact) Other(id BodyID) (BodyID, BodyState) {
	if c.A == id {
		return c.B, c.StateB
	}
	return c.A, c.StateA
}

// Self returns the state of id within the contact.
func (c Contact) Self(id BodyID) BodyState {
	if c.A == id {
		return c.StateA
	}
	return c.StateB
}

type body struct {
	BodyState
	id     BodyID
	opts   BodyOptions
	fx, fy float64
	obj    *resolv.Object
}

type pairKey struct{ a, b BodyID }

// World owns a set of bodies. It is not safe for concurrent use; rooms guard
// it with their own lock and the client predictor is single-threaded.
type World struct {
	cfg      Config
	space    *resolv.Space
	bodies   map[BodyID]*body
	order    []BodyID
	objects  map[*resolv.Object]BodyID
	touching map[pairKey]struct{}
	nextID   BodyID
	offsetX  float64
	offsetY  float64
}

// NewWorld creates an empty world.
func NewWorld(cfg Config) *World {
	if cfg.CellSize <= 0 {
		cfg.CellSize = 32
	}
	return &World{
		cfg:      cfg,
		space:    resolv.NewSpace(cfg.Width, cfg.Height, cfg.CellSize, cfg.CellSize),
		bodies:   make(map[BodyID]*body),
		objects:  make(map[*resolv.Object]BodyID),
		touching: make(map[pairKey]struct{}),
		offsetX:  float64(cfg.Width) / 2,
		offsetY:  float64(cfg.Height) / 2,
	}
}

// AddStatic adds an immovable box centered at x, y.
func (w *World) AddStatic(x, y, halfW, halfH float64) BodyID {
	return w.add(BodyState{X: x, Y: y, HalfW: halfW, HalfH: halfH, Static: true}, BodyOptions{}, tagStatic)
}

// AddBody adds a dynamic body of the given radius centered at x, y. It
// collides as a box of side 2*radius.
func (w *World) AddBody(x, y, radius float64, opts BodyOptions) BodyID {
	if opts.Mass <= 0 {
		opts.Mass = 1
	}
	st := BodyState{X: x, Y: y, HalfW: radius, HalfH: radius, Mass: opts.Mass}
	return w.add(st, opts, tagDynamic)
}

func (w *World) add(st BodyState, opts BodyOptions, tag string) BodyID {
	w.nextID++
	b := &body{BodyState: st, id: w.nextID, opts: opts}
	b.obj = resolv.NewObject(st.X-st.HalfW+w.offsetX, st.Y-st.HalfH+w.offsetY, 2*st.HalfW, 2*st.HalfH, tag)
	b.obj.SetShape(resolv.NewRectangle(0, 0, 2*st.HalfW, 2*st.HalfH))
	w.space.Add(b.obj)

	w.bodies[b.id] = b
	w.objects[b.obj] = b.id
	w.order = append(w.order, b.id)
	return b.id
}

// Remove deletes a body. Unknown ids are ignored.
func (w *World) Remove(id BodyID) {
	b, ok := w.bodies[id]
	if !ok {
		return
	}
	w.space.Remove(b.obj)
	delete(w.objects, b.obj)
	delete(w.bodies, id)
	for i, other := range w.order {
		if other == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	for key := range w.touching {
		if key.a == id || key.b == id {
			delete(w.touching, key)
		}
	}
}

// Clear removes every body.
func (w *World) Clear() {
	for _, b := range w.bodies {
		w.space.Remove(b.obj)
	}
	w.bodies = make(map[BodyID]*body)
	w.objects = make(map[*resolv.Object]BodyID)
	w.touching = make(map[pairKey]struct{})
	w.order = nil
}

// Len reports the number of bodies, static ones included.
func (w *World) Len() int {
	return len(w.bodies)
}

// State returns a copy of a body's state.
func (w *World) State(id BodyID) (BodyState, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return BodyState{}, false
	}
	return b.BodyState, true
}

// SetPosition teleports a body.
func (w *World) SetPosition(id BodyID, x, y float64) {
	if b, ok := w.bodies[id]; ok {
		b.X, b.Y = x, y
		w.sync(b)
	}
}

// SetVelocity overrides a body's velocity.
func (w *World) SetVelocity(id BodyID, vx, vy float64) {
	if b, ok := w.bodies[id]; ok && !b.Static {
		b.VX, b.VY = vx, vy
	}
}

// SetMass overrides a dynamic body's mass. Non-positive masses are ignored.
func (w *World) SetMass(id BodyID, mass float64) {
	if b, ok := w.bodies[id]; ok && !b.Static && mass > 0 {
		b.Mass = mass
	}
}

// Mass returns a body's mass, zero for static or unknown bodies.
func (w *World) Mass(id BodyID) float64 {
	if b, ok := w.bodies[id]; ok {
		return b.Mass
	}
	return 0
}

// ApplyForce accumulates a force that is consumed by the next Step.
func (w *World) ApplyForce(id BodyID, fx, fy float64) {
	if b, ok := w.bodies[id]; ok && !b.Static {
		b.fx += fx
		b.fy += fy
	}
}

// Step advances the world by one frame and returns the pairs that started
// touching during it, sorted by body id.
func (w *World) Step() []Contact {
	dt2 := w.cfg.StepMillis * w.cfg.StepMillis
	gravity := w.cfg.Gravity * w.cfg.GravityScale

	for _, id := range w.order {
		b := w.bodies[id]
		if b.Static {
			continue
		}
		b.VX += b.fx / b.Mass * dt2
		b.VY += (b.fy/b.Mass + gravity) * dt2
		b.VX = gamemath.Damp(b.VX, b.opts.FrictionAir)
		b.VY = gamemath.Damp(b.VY, b.opts.FrictionAir)
		b.X += b.VX
		b.Y += b.VY
		b.fx, b.fy = 0, 0
		w.sync(b)
	}

	touching := w.detect()
	next := make(map[pairKey]struct{}, len(touching))
	var started []Contact
	for _, c := range touching {
		key := pairKey{c.A, c.B}
		next[key] = struct{}{}
		if _, ok := w.touching[key]; !ok {
			started = append(started, c)
		}
	}
	w.touching = next

	for _, c := range touching {
		w.separate(w.bodies[c.A], w.bodies[c.B])
	}
	return started
}

// detect lists every touching pair that involves at least one dynamic body.
func (w *World) detect() []Contact {
	var out []Contact
	for _, id := range w.order {
		b := w.bodies[id]
		if b.Static {
			continue
		}
		for _, otherID := range w.neighbours(b) {
			other := w.bodies[otherID]
			if !other.Static && otherID < id {
				continue
			}
			if !touches(b, other) {
				continue
			}
			c := Contact{A: id, B: otherID, StateA: b.BodyState, StateB: other.BodyState}
			if otherID < id {
				c = Contact{A: otherID, B: id, StateA: other.BodyState, StateB: b.BodyState}
			}
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// neighbours runs the broadphase: every body sharing a grid cell with b's box
// grown by the contact slop.
func (w *World) neighbours(b *body) []BodyID {
	seen := make(map[BodyID]struct{})
	var ids []BodyID
	reach := contactSlop + 1
	for _, d := range [2]float64{-reach, reach} {
		check := b.obj.Check(d, d)
		if check == nil {
			continue
		}
		for _, tag := range [2]string{tagStatic, tagDynamic} {
			for _, obj := range check.ObjectsByTags(tag) {
				id, ok := w.objects[obj]
				if !ok || id == b.id {
					continue
				}
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func touches(a, b *body) bool {
	return gamemath.Overlap(a.X, a.HalfW, b.X, b.HalfW) >= -contactSlop &&
		gamemath.Overlap(a.Y, a.HalfH, b.Y, b.HalfH) >= -contactSlop
}

// separate pushes an overlapping pair apart along the axis of least
// penetration and removes their approaching velocity.
func (w *World) separate(a, b *body) {
	ox := gamemath.Overlap(a.X, a.HalfW, b.X, b.HalfW)
	oy := gamemath.Overlap(a.Y, a.HalfH, b.Y, b.HalfH)
	if ox <= 0 || oy <= 0 {
		return
	}

	// Normal points from a to b.
	var normal vector.Vector
	depth := ox
	if ox <= oy {
		normal = vector.Vector{gamemath.Direction(b.X - a.X), 0}
	} else {
		normal = vector.Vector{0, gamemath.Direction(b.Y - a.Y)}
		depth = oy
	}

	switch {
	case a.Static && b.Static:
		return
	case a.Static:
		w.pushOut(b, normal, depth)
	case b.Static:
		w.pushOut(a, vector.Vector{-normal.X(), -normal.Y()}, depth)
	default:
		w.exchange(a, b, normal, depth)
	}
}

// pushOut moves a dynamic body out of a static one along n (pointing away
// from the static body) and bounces its normal velocity.
func (w *World) pushOut(d *body, n vector.Vector, depth float64) {
	d.X += n.X() * depth
	d.Y += n.Y() * depth

	vn := gamemath.Dot(d.VX, d.VY, n.X(), n.Y())
	if vn < 0 {
		bounce := -vn * d.opts.Restitution
		if bounce < restingSpeed {
			bounce = 0
		}
		// Replace the normal component. Coulomb friction then takes at most
		// Friction times the normal change off the tangential one.
		dn := bounce - vn
		d.VX += n.X() * dn
		d.VY += n.Y() * dn
		if n.X() == 0 {
			d.VX = applyFriction(d.VX, d.opts.Friction*dn)
		} else {
			d.VY = applyFriction(d.VY, d.opts.Friction*dn)
		}
	}
	w.sync(d)
}

// applyFriction moves v toward zero by at most limit.
func applyFriction(v, limit float64) float64 {
	if math.Abs(v) <= limit {
		return 0
	}
	return v - math.Copysign(limit, v)
}

// exchange separates two dynamic bodies in proportion to their inverse mass
// and resolves their normal velocity as a partially elastic collision.
func (w *World) exchange(a, b *body, n vector.Vector, depth float64) {
	ia, ib := 1/a.Mass, 1/b.Mass
	total := ia + ib

	a.X -= n.X() * depth * ia / total
	a.Y -= n.Y() * depth * ia / total
	b.X += n.X() * depth * ib / total
	b.Y += n.Y() * depth * ib / total

	vrel := gamemath.Dot(b.VX-a.VX, b.VY-a.VY, n.X(), n.Y())
	if vrel < 0 {
		e := math.Min(a.opts.Restitution, b.opts.Restitution)
		j := -(1 + e) * vrel / total
		a.VX -= j * ia * n.X()
		a.VY -= j * ia * n.Y()
		b.VX += j * ib * n.X()
		b.VY += j * ib * n.Y()
	}
	w.sync(a)
	w.sync(b)
}

// sync mirrors a body's position into its resolv object.
func (w *World) sync(b *body) {
	b.obj.X = b.X - b.HalfW + w.offsetX
	b.obj.Y = b.Y - b.HalfH + w.offsetY
	b.obj.Update()
}
