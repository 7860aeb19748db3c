package network

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/automoto/bouncerz-mp/shared/messages"
	"github.com/coder/websocket"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoinedGame
	StateError
)

const writeTimeout = 5 * time.Second

var ErrNotConnected = errors.New("not connected")

// Client manages a WebSocket connection to the game server.
// All shared fields are protected by mu (the read loop runs on its own goroutine).
type Client struct {
	mu sync.RWMutex

	state     ClientState
	lastError error
	playerID  string
	welcome   messages.Welcome
	conn      *websocket.Conn
	codec     messages.Codec
	cancel    context.CancelFunc
	done      chan struct{}

	welcomeCh  chan messages.Welcome  // size-1 buffered
	snapshotCh chan messages.Snapshot // size-1 buffered; latest wins
	eventCh    chan messages.Message
}

// NewClient creates a client speaking codec. A nil codec means JSON.
func NewClient(codec messages.Codec) *Client {
	if codec == nil {
		codec = messages.JSON
	}
	return &Client{
		state:      StateDisconnected,
		codec:      codec,
		done:       make(chan struct{}),
		welcomeCh:  make(chan messages.Welcome, 1),
		snapshotCh: make(chan messages.Snapshot, 1),
		eventCh:    make(chan messages.Message, 32),
	}
}

// Connect dials the server and starts the read loop. url is a full ws:// or
// wss:// address including the /ws path.
func (c *Client) Connect(ctx context.Context, url string) error {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		err = fmt.Errorf("connection failed: %w", err)
		c.setError(err)
		return err
	}

	readCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.conn = conn
	c.cancel = cancel
	c.state = StateConnected
	c.mu.Unlock()

	log.Println("[client] connected to server")
	go c.readLoop(readCtx, conn)
	return nil
}

// Join asks to enter the match with the given handle.
func (c *Client) Join(match string, profile Profile) error {
	return c.SendMessage(messages.Join{
		Match:       match,
		DisplayName: profile.Name,
		Color:       profile.Color,
	})
}

// SendInput transmits one predicted input.
func (c *Client) SendInput(in messages.Input) error {
	return c.SendMessage(in)
}

// Ping sends a latency ping stamped with the client clock in milliseconds.
func (c *Client) Ping(now time.Time) error {
	return c.SendMessage(messages.PingTest{Time: float64(now.UnixMilli())})
}

func (c *Client) SendMessage(msg messages.Message) error {
	c.mu.RLock()
	conn := c.conn
	codec := c.codec
	c.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	payload, err := codec.Encode(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	typ := websocket.MessageText
	if codec.Binary() {
		typ = websocket.MessageBinary
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return conn.Write(ctx, typ, payload)
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer close(c.done)
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			log.Printf("[client] disconnected: %v", err)
			c.mu.Lock()
			if c.state != StateError {
				c.state = StateDisconnected
			}
			c.conn = nil
			c.mu.Unlock()
			return
		}

		codec := messages.JSON
		if typ == websocket.MessageBinary {
			codec = messages.Msgpack
		}
		msg, err := codec.Decode(data)
		if err != nil {
			log.Printf("[client] bad message: %v", err)
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg messages.Message) {
	switch m := msg.(type) {
	case *messages.Welcome:
		log.Printf("[client] joined: id=%s round=%d platforms=%d", m.ID, m.Round, len(m.Map))
		c.mu.Lock()
		c.playerID = m.ID
		c.welcome = *m
		c.state = StateJoinedGame
		c.mu.Unlock()
		select { // drain stale, push latest
		case <-c.welcomeCh:
		default:
		}
		c.welcomeCh <- *m
	case *messages.Snapshot:
		select { // drain stale, push latest
		case <-c.snapshotCh:
		default:
		}
		c.snapshotCh <- *m
	default:
		select {
		case c.eventCh <- msg:
		default:
		}
	}
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	cancel := c.cancel
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
	}
	if cancel != nil {
		cancel()
	}
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *Client) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// LastWelcome returns the most recent welcome, zero before the first join.
func (c *Client) LastWelcome() messages.Welcome {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.welcome
}

// Welcomes delivers the server's welcome after each successful join.
func (c *Client) Welcomes() <-chan messages.Welcome {
	return c.welcomeCh
}

// Done is closed when the read loop exits.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// LatestSnapshot returns the most recent Snapshot, or nil. Non-blocking.
func (c *Client) LatestSnapshot() *messages.Snapshot {
	select {
	case snap := <-c.snapshotCh:
		return &snap
	default:
		return nil
	}
}

// DrainEvents returns all pending non-snapshot messages, non-blocking.
func (c *Client) DrainEvents() []messages.Message {
	return drainChan(c.eventCh)
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
