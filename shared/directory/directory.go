// Package directory holds the wire types of the server directory: game
// servers register and heartbeat, clients list.
package directory

const (
	PathList      = "/servers"
	PathRegister  = "/servers/register"
	PathHeartbeat = "/servers/heartbeat"
)

// List query parameters.
const (
	QueryRegion  = "region"
	QueryVersion = "version"
	QuerySort    = "sort"
	QueryLimit   = "limit"

	// SortPlayers lists the busiest servers first; it is the default.
	SortPlayers = "players"
	// SortRooms lists the servers running the fewest rooms first.
	SortRooms = "rooms"
)

// ServerInfo describes a game server visible to clients.
type ServerInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"` // WebSocket URL clients dial
	Rooms   int    `json:"rooms"`
	Players int    `json:"players"`
	Version string `json:"version"`
	Region  string `json:"region"`
}

type RegisterRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Rooms   int    `json:"rooms"`
	Players int    `json:"players"`
	Version string `json:"version"`
	Region  string `json:"region"`
}

type RegisterResponse struct {
	ID string `json:"id"`
}

type HeartbeatRequest struct {
	ID      string `json:"id"`
	Rooms   int    `json:"rooms"`
	Players int    `json:"players"`
}

// Summary is the directory-wide load reported by the master's health check.
type Summary struct {
	Status  string `json:"status"`
	Servers int    `json:"servers"`
	Rooms   int    `json:"rooms"`
	Players int    `json:"players"`
}
