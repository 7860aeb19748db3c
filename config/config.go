package config

import "time"

// Version is reported to the server directory.
const Version = "0.3.0"

// ServerConfig contains the match server's process settings
type ServerConfig struct {
	Addr string

	// Connections
	SendBuffer   int           // Outbound messages queued per session
	ReadLimit    int64         // Max inbound frame size in bytes
	WriteTimeout time.Duration // Per-frame write deadline
	InboundRate  float64       // Messages per second per session, 0 for no limit
	InboundBurst int

	// Rooms
	TickWorkers   int           // Rooms ticked in parallel
	SweepInterval time.Duration // Idle room sweep period
	MapName       string        // Empty for the built-in layout

	// Server directory; registration is off when MasterURL is empty
	MasterURL         string
	PublicAddr        string // WebSocket URL advertised to clients
	Name              string
	Region            string
	HeartbeatInterval time.Duration
}

// MatchConfig contains round and room lifecycle rules
type MatchConfig struct {
	MinPlayers   int
	WinningScore int
	MaxRounds    int

	NextRoundDelay time.Duration
	MatchEndDelay  time.Duration
	PingDelay      time.Duration // Artificial pong delay for latency display

	InactivityLimit time.Duration
	RetentionAge    time.Duration

	MaxQueuedInputs int // Per player, oldest dropped beyond this
}

// ClientConfig contains prediction and reconciliation tuning
type ClientConfig struct {
	SnapThreshold     float64
	BlendThreshold    float64
	BlendFactor       float64
	ReconcileInterval time.Duration
	HistorySize       int // Unacknowledged inputs kept for replay
}

var Server ServerConfig
var Match MatchConfig
var Client ClientConfig

func init() {
	Server = ServerConfig{
		Addr: ":8080",

		SendBuffer:   64,
		ReadLimit:    16 << 10,
		WriteTimeout: 5 * time.Second,
		InboundRate:  120, // two inputs per tick at 60 Hz
		InboundBurst: 240,

		TickWorkers:   8,
		SweepInterval: 5 * time.Minute,

		Name:              "bouncerz",
		HeartbeatInterval: 30 * time.Second,
	}

	Match = MatchConfig{
		MinPlayers:   2,
		WinningScore: 3,
		MaxRounds:    20,

		NextRoundDelay: 3 * time.Second,
		MatchEndDelay:  3 * time.Second,
		PingDelay:      200 * time.Millisecond,

		InactivityLimit: 10 * time.Minute,
		RetentionAge:    24 * time.Hour,

		MaxQueuedInputs: 120, // 2 seconds at 60 Hz
	}

	Client = ClientConfig{
		SnapThreshold:     80,
		BlendThreshold:    10,
		BlendFactor:       0.1,
		ReconcileInterval: 100 * time.Millisecond,
		HistorySize:       256,
	}
}
