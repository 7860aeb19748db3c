package messages

import "github.com/automoto/bouncerz-mp/shared/arena"

// Keys is the held key state as clients send it: a/d move, w jumps, space
// holds rigid mode.
type Keys struct {
	A     bool `json:"a" msgpack:"a"`
	D     bool `json:"d" msgpack:"d"`
	W     bool `json:"w" msgpack:"w"`
	Space bool `json:"space" msgpack:"space"`
}

// Arena converts wire keys to rule keys.
func (k Keys) Arena() arena.Keys {
	return arena.Keys{Left: k.A, Right: k.D, Jump: k.W, Rigid: k.Space}
}

// KeysFrom converts rule keys to wire keys.
func KeysFrom(k arena.Keys) Keys {
	return Keys{A: k.Left, D: k.Right, W: k.Jump, Space: k.Rigid}
}

// Input is sent from client to server every predicted frame. Timestamp is the
// client clock in milliseconds and doubles as the acknowledgement key.
type Input struct {
	Keys      Keys    `json:"keys" msgpack:"keys"`
	Timestamp float64 `json:"timestamp" msgpack:"timestamp"`
}

func (Input) MessageType() string { return TypeInput }

// Arena converts the message to a rule input.
func (in Input) Arena() arena.Input {
	return arena.Input{Timestamp: in.Timestamp, Keys: in.Keys.Arena()}
}

// PingTest asks the server for a delayed pong, used for latency display.
type PingTest struct {
	Time float64 `json:"time" msgpack:"time"`
}

func (PingTest) MessageType() string { return TypePingTest }

// PongTest answers a PingTest.
type PongTest struct {
	ClientTime float64 `json:"clientTime" msgpack:"clientTime"`
	ServerTime int64   `json:"serverTime" msgpack:"serverTime"`
}

func (PongTest) MessageType() string { return TypePongTest }
