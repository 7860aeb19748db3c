package core

// Scoreboard keeps match scores in the order players first joined. Entries
// outlive their players so a returning or departed player's score stays in
// the table until the room is destroyed.
type Scoreboard struct {
	order  []string
	scores map[string]int
}

func NewScoreboard() *Scoreboard {
	return &Scoreboard{scores: make(map[string]int)}
}

// Add registers a player with a zero score. Existing entries are kept.
func (s *Scoreboard) Add(id string) {
	if _, ok := s.scores[id]; ok {
		return
	}
	s.order = append(s.order, id)
	s.scores[id] = 0
}

// Award gives a player one point and returns the new score.
func (s *Scoreboard) Award(id string) int {
	s.Add(id)
	s.scores[id]++
	return s.scores[id]
}

// Score returns a player's score, zero when unknown.
func (s *Scoreboard) Score(id string) int {
	return s.scores[id]
}

// Leader returns the highest scoring player. Ties go to the earliest entry.
func (s *Scoreboard) Leader() (string, int) {
	leader, best := "", -1
	for _, id := range s.order {
		if score := s.scores[id]; score > best {
			leader, best = id, score
		}
	}
	if best < 0 {
		best = 0
	}
	return leader, best
}

// Snapshot returns a copy of the table suitable for sending.
func (s *Scoreboard) Snapshot() map[string]int {
	out := make(map[string]int, len(s.scores))
	for id, score := range s.scores {
		out[id] = score
	}
	return out
}

// Len reports the number of entries.
func (s *Scoreboard) Len() int {
	return len(s.order)
}
