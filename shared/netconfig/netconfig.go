// Package netconfig defines lightweight types shared between client and server
// for network serialization. It must have zero dependencies on the physics or
// transport packages so both sides can import it freely.
package netconfig

// RoomStatus is the round state of a room.
type RoomStatus int

const (
	RoomWaiting RoomStatus = iota // Below the minimum player count
	RoomPlaying                   // Round active, ticking physics
	RoomPaused                    // Round just ended, next one scheduled
	RoomEnded                     // Match over, room awaiting destruction
)

var roomStatusNames = map[RoomStatus]string{
	RoomWaiting: "waiting",
	RoomPlaying: "playing",
	RoomPaused:  "paused",
	RoomEnded:   "ended",
}

func (s RoomStatus) String() string {
	if name, ok := roomStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

const (
	// DrawWinner is the roundWinner value for a round nobody survived.
	DrawWinner = "draw"

	// ReasonMaxRounds marks a match decided by the round limit.
	ReasonMaxRounds = "maxRounds"

	// RoomPrefix is prepended to a match handle to form the room id.
	RoomPrefix = "match-"
)

// RoomID derives the room identifier for a match handle.
func RoomID(match string) string {
	return RoomPrefix + match
}
