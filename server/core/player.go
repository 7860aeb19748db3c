package core

import (
	"github.com/automoto/bouncerz-mp/shared/arena"
	"github.com/automoto/bouncerz-mp/shared/physics"
	"github.com/yohamta/donburi"
)

// spawnPlayerLocked creates the player's entity and body at the spawn point.
func (r *Room) spawnPlayerLocked(id, name, color string, conn Conn) {
	body := arena.SpawnBody(r.world, r.layout.Spawn.X, r.layout.Spawn.Y)

	entity := r.ecs.Create(Player, Avatar, Inputs)
	entry := r.ecs.Entry(entity)
	Player.Set(entry, &PlayerData{ID: id, Name: name, Color: color, Conn: conn})
	Avatar.Set(entry, &arena.Avatar{Body: body, Alive: true})
	queue := NewInputQueue(r.rules.MaxQueuedInputs)
	Inputs.Set(entry, &queue)

	r.players[id] = entity
	r.order = append(r.order, id)
	r.bodies[body] = entity
}

// removePlayerLocked deletes the player's body and entity. Its score entry
// stays.
func (r *Room) removePlayerLocked(id string) bool {
	entity, ok := r.players[id]
	if !ok {
		return false
	}
	if r.ecs.Valid(entity) {
		body := Avatar.Get(r.ecs.Entry(entity)).Body
		r.world.Remove(body)
		delete(r.bodies, body)
		r.ecs.Remove(entity)
	}
	delete(r.players, id)
	for i, other := range r.order {
		if other == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Room) entryLocked(id string) (*donburi.Entry, bool) {
	entity, ok := r.players[id]
	if !ok || !r.ecs.Valid(entity) {
		return nil, false
	}
	return r.ecs.Entry(entity), true
}

// avatarForBody resolves collision contacts back to players.
func (r *Room) avatarForBody(id physics.BodyID) (*arena.Avatar, bool) {
	entity, ok := r.bodies[id]
	if !ok || !r.ecs.Valid(entity) {
		return nil, false
	}
	return Avatar.Get(r.ecs.Entry(entity)), true
}

// PlayerView is a read-only copy of one player's state.
type PlayerView struct {
	ID        string
	X, Y      float64
	VX, VY    float64
	Alive     bool
	CanJump   bool
	Rigid     bool
	Mass      float64
	LastInput float64
	Queued    int
}

// Player returns a copy of a player's state.
func (r *Room) Player(id string) (PlayerView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entryLocked(id)
	if !ok {
		return PlayerView{}, false
	}
	av := Avatar.Get(entry)
	st, _ := r.world.State(av.Body)
	return PlayerView{
		ID:        id,
		X:         st.X,
		Y:         st.Y,
		VX:        st.VX,
		VY:        st.VY,
		Alive:     av.Alive,
		CanJump:   av.CanJump,
		Rigid:     av.Rigid,
		Mass:      st.Mass,
		LastInput: av.LastInput,
		Queued:    Inputs.Get(entry).Len(),
	}, true
}
