package messages

import "github.com/automoto/bouncerz-mp/shared/leveldata"

// UserInfo is the optional identity block some clients attach to a join.
type UserInfo struct {
	Name  string `json:"name,omitempty" msgpack:"name,omitempty"`
	Color string `json:"color,omitempty" msgpack:"color,omitempty"`
}

// Join is the first message a client sends. Match is the external match
// handle the room id is derived from.
type Join struct {
	Match       string    `json:"match" msgpack:"match"`
	DisplayName string    `json:"displayName,omitempty" msgpack:"displayName,omitempty"`
	Color       string    `json:"color,omitempty" msgpack:"color,omitempty"`
	User        *UserInfo `json:"user,omitempty" msgpack:"user,omitempty"`
}

func (Join) MessageType() string { return TypeJoin }

// Name returns the display name, preferring the explicit field over the user
// block.
func (j Join) Name() string {
	if j.DisplayName != "" {
		return j.DisplayName
	}
	if j.User != nil {
		return j.User.Name
	}
	return ""
}

// PlayerColor returns the cosmetic color, preferring the explicit field over
// the user block.
func (j Join) PlayerColor() string {
	if j.Color != "" {
		return j.Color
	}
	if j.User != nil {
		return j.User.Color
	}
	return ""
}

// Welcome is the server's reply to a successful join.
type Welcome struct {
	ID       string               `json:"id" msgpack:"id"`
	Map      []leveldata.Platform `json:"map" msgpack:"map"`
	Round    int                  `json:"round" msgpack:"round"`
	TickRate int                  `json:"tickRate" msgpack:"tickRate"`
	Spawn    leveldata.Point      `json:"spawn" msgpack:"spawn"`
}

func (Welcome) MessageType() string { return TypeWelcome }
