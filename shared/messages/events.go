package messages

// PlayerState is one player's entry in a snapshot.
type PlayerState struct {
	ID                 string  `json:"id" msgpack:"id"`
	X                  float64 `json:"x" msgpack:"x"`
	Y                  float64 `json:"y" msgpack:"y"`
	VX                 float64 `json:"vx" msgpack:"vx"`
	VY                 float64 `json:"vy" msgpack:"vy"`
	Alive              bool    `json:"alive" msgpack:"alive"`
	Score              int     `json:"score" msgpack:"score"`
	IsRigid            bool    `json:"isRigid" msgpack:"isRigid"`
	LastProcessedInput float64 `json:"lastProcessedInput" msgpack:"lastProcessedInput"`
	Name               string  `json:"name,omitempty" msgpack:"name,omitempty"`
	Color              string  `json:"color,omitempty" msgpack:"color,omitempty"`
}

// Snapshot is the authoritative state of a room, broadcast every tick while
// a round is playing.
type Snapshot struct {
	Players []PlayerState  `json:"players" msgpack:"players"`
	Scores  map[string]int `json:"scores" msgpack:"scores"`
	Round   int            `json:"round" msgpack:"round"`
}

func (Snapshot) MessageType() string { return TypeSnapshot }

// Player returns the entry for id.
func (s *Snapshot) Player(id string) (PlayerState, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerState{}, false
}

// Start is broadcast when a round begins.
type Start struct {
	Round int `json:"round" msgpack:"round"`
}

func (Start) MessageType() string { return TypeStart }

// ScoreUpdate is broadcast after a decisive round.
type ScoreUpdate struct {
	Scores map[string]int `json:"scores" msgpack:"scores"`
}

func (ScoreUpdate) MessageType() string { return TypeScoreUpdate }

// RoundWinner is broadcast when a round ends. Winner is a player id or
// "draw".
type RoundWinner struct {
	Round  int    `json:"round" msgpack:"round"`
	Winner string `json:"winner" msgpack:"winner"`
}

func (RoundWinner) MessageType() string { return TypeRoundWinner }

// MatchWinner is broadcast once per match, right before the room is torn
// down.
type MatchWinner struct {
	Winner string         `json:"winner" msgpack:"winner"`
	Scores map[string]int `json:"scores" msgpack:"scores"`
	Reason string         `json:"reason,omitempty" msgpack:"reason,omitempty"`
}

func (MatchWinner) MessageType() string { return TypeMatchWinner }
