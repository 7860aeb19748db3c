package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/automoto/bouncerz-mp/config"
	"github.com/automoto/bouncerz-mp/shared/directory"
	"github.com/automoto/bouncerz-mp/shared/leveldata"
	"github.com/automoto/bouncerz-mp/shared/messages"
	"github.com/automoto/bouncerz-mp/shared/netconfig"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Server is the connection gateway: it accepts WebSocket clients, routes
// their messages to rooms and owns the tick loop and the idle sweeper.
type Server struct {
	cfg   config.ServerConfig
	rules config.MatchConfig
	rooms *Manager
	loop  *GameLoop

	// Base context for session writers; cancelled on shutdown.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewServer creates a gateway serving rooms built from layout.
func NewServer(cfg config.ServerConfig, rules config.MatchConfig, layout leveldata.Layout) *Server {
	rooms := NewManager(layout, rules)
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:      cfg,
		rules:    rules,
		rooms:    rooms,
		loop:     NewGameLoop(rooms, cfg.TickWorkers),
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
}

// Rooms exposes the room registry.
func (s *Server) Rooms() *Manager {
	return s.rooms
}

// Handler serves /ws and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Run serves on the configured address and ticks rooms until ctx is done,
// then shuts everything down.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.loop.Run(ctx)
	})
	g.Go(func() error {
		s.rooms.RunSweeper(ctx, s.cfg.SweepInterval)
		return nil
	})
	if s.cfg.MasterURL != "" {
		reg := NewRegistration(s.cfg.MasterURL, directory.RegisterRequest{
			Name:    s.cfg.Name,
			Address: s.cfg.PublicAddr,
			Version: config.Version,
			Region:  s.cfg.Region,
		}, s.cfg.HeartbeatInterval, s.rooms.Stats)
		g.Go(func() error {
			reg.Run(ctx)
			return nil
		})
	}
	g.Go(func() error {
		log.Printf("[gateway] listening on %s", s.cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Shutdown closes every session and destroys every room.
func (s *Server) Shutdown() {
	s.cancel()

	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	for _, sess := range sessions {
		sess.Close(websocket.StatusGoingAway, "server shutting down")
	}
	s.rooms.Close()
}

// Tick advances every room once. The game loop calls this on its ticker;
// tests call it directly.
func (s *Server) Tick() {
	s.loop.tick()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("[gateway] accept: %v", err)
		return
	}
	if s.cfg.ReadLimit > 0 {
		conn.SetReadLimit(s.cfg.ReadLimit)
	}

	sess := newSession(uuid.NewString(), conn, s.cfg.SendBuffer)
	if s.cfg.InboundRate > 0 {
		sess.limiter = rate.NewLimiter(rate.Limit(s.cfg.InboundRate), max(s.cfg.InboundBurst, 1))
	}
	s.onConnect(sess)
	defer s.onDisconnect(sess)

	go sess.writeLoop(s.ctx, s.cfg.WriteTimeout)

	for {
		typ, data, err := conn.Read(s.ctx)
		if err != nil {
			sess.abort()
			return
		}
		if !sess.allow() {
			if sess.dropped%100 == 1 {
				log.Printf("[gateway] %s: rate limited, %d messages dropped", sess.ID, sess.dropped)
			}
			continue
		}
		msg, err := sess.codecFor(typ).Decode(data)
		if err == nil {
			err = messages.Validate(msg)
		}
		if err != nil {
			log.Printf("[gateway] %s: ignoring message: %v", sess.ID, err)
			continue
		}
		s.dispatch(sess, msg)
	}
}

func (s *Server) dispatch(sess *Session, msg messages.Message) {
	switch m := msg.(type) {
	case *messages.Join:
		s.onJoin(sess, m)
	case *messages.Input:
		s.onInput(sess, m)
	case *messages.PingTest:
		s.onPingTest(sess, m)
	default:
		log.Printf("[gateway] %s: unexpected %s from client", sess.ID, msg.MessageType())
	}
}

func (s *Server) onConnect(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	log.Printf("[gateway] client connected: %s", sess.ID)
}

func (s *Server) onJoin(sess *Session, join *messages.Join) {
	if sess.room != nil && !sess.room.Closed() {
		log.Printf("[gateway] %s: already in %s, ignoring join", sess.ID, sess.room.ID)
		return
	}
	if sess.room != nil {
		sess.room.Leave(sess.ID)
		sess.room = nil
	}

	roomID := netconfig.RoomID(join.Match)
	// A room can finish its match between lookup and join; retry once on a
	// fresh one.
	for attempt := 0; attempt < 2; attempt++ {
		room := s.rooms.GetOrCreate(roomID)
		err := room.Join(sess.ID, join.Name(), join.PlayerColor(), sess)
		if errors.Is(err, ErrRoomClosed) {
			continue
		}
		if err != nil {
			log.Printf("[gateway] %s: join %s: %v", sess.ID, roomID, err)
			return
		}
		sess.room = room
		return
	}
	log.Printf("[gateway] %s: join %s: %v", sess.ID, roomID, ErrRoomClosed)
}

func (s *Server) onInput(sess *Session, in *messages.Input) {
	if sess.room == nil {
		return
	}
	sess.room.PushInput(sess.ID, in.Arena())
}

func (s *Server) onPingTest(sess *Session, ping *messages.PingTest) {
	clientTime := ping.Time
	time.AfterFunc(s.rules.PingDelay, func() {
		_ = sess.Send(messages.PongTest{
			ClientTime: clientTime,
			ServerTime: time.Now().UnixMilli(),
		})
	})
}

func (s *Server) onDisconnect(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()

	if sess.room != nil {
		sess.room.Leave(sess.ID)
	}
	log.Printf("[gateway] client disconnected: %s", sess.ID)
}

type healthResponse struct {
	Status  string `json:"status"`
	Time    string `json:"time"`
	Rooms   int    `json:"rooms"`
	Players int    `json:"players"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	st := s.rooms.Stats()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Rooms:   st.Rooms,
		Players: st.Players,
	}); err != nil {
		log.Printf("[gateway] health encode error: %v", err)
	}
}

// SessionCount reports the number of open connections.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
