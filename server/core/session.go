package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/automoto/bouncerz-mp/shared/messages"
	"github.com/coder/websocket"
	"golang.org/x/time/rate"
)

var (
	ErrSessionClosed  = errors.New("session closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

type frame struct {
	typ  websocket.MessageType
	data []byte
}

// Session is one client connection. Outbound messages are encoded by the
// caller and handed to a writer goroutine through a bounded buffer, so Send
// never blocks a room tick.
type Session struct {
	ID string

	conn *websocket.Conn
	send chan frame
	done chan struct{}

	mu    sync.Mutex
	codec messages.Codec

	// limiter caps inbound messages; nil means unlimited.
	limiter *rate.Limiter
	dropped int

	// room is only touched by the connection's read goroutine.
	room *Room

	closeOnce sync.Once
}

func newSession(id string, conn *websocket.Conn, buffer int) *Session {
	if buffer <= 0 {
		buffer = 1
	}
	return &Session{
		ID:   id,
		conn: conn,
		send: make(chan frame, buffer),
		done: make(chan struct{}),
	}
}

// allow reports whether the next inbound message fits the rate limit. Only
// the read goroutine calls it.
func (s *Session) allow() bool {
	if s.limiter == nil || s.limiter.Allow() {
		return true
	}
	s.dropped++
	return false
}

// codecFor returns the decoder for an inbound frame. The first frame fixes
// the session's outbound codec: text means JSON, binary means msgpack.
func (s *Session) codecFor(typ websocket.MessageType) messages.Codec {
	c := messages.JSON
	if typ == websocket.MessageBinary {
		c = messages.Msgpack
	}
	s.mu.Lock()
	if s.codec == nil {
		s.codec = c
	}
	s.mu.Unlock()
	return c
}

func (s *Session) outbound() messages.Codec {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.codec == nil {
		return messages.JSON
	}
	return s.codec
}

// Send queues a message for the writer. It fails fast when the session is
// closed or its buffer is full.
func (s *Session) Send(m messages.Message) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	codec := s.outbound()
	data, err := codec.Encode(m)
	if err != nil {
		return err
	}
	f := frame{typ: websocket.MessageText, data: data}
	if codec.Binary() {
		f.typ = websocket.MessageBinary
	}

	select {
	case s.send <- f:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		return fmt.Errorf("%s %s: %w", s.ID, m.MessageType(), ErrSendBufferFull)
	}
}

// writeLoop drains the send buffer until the session closes or a write
// fails.
func (s *Session) writeLoop(ctx context.Context, timeout time.Duration) {
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			s.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case f := <-s.send:
			wctx, cancel := context.WithTimeout(ctx, timeout)
			err := s.conn.Write(wctx, f.typ, f.data)
			cancel()
			if err != nil {
				s.abort()
				return
			}
		}
	}
}

// Close ends the session with a close handshake.
func (s *Session) Close(code websocket.StatusCode, reason string) {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close(code, reason)
	})
}

// abort ends the session without a handshake.
func (s *Session) abort() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.CloseNow()
	})
}
