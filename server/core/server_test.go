package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/automoto/bouncerz-mp/config"
	"github.com/automoto/bouncerz-mp/shared/leveldata"
	"github.com/automoto/bouncerz-mp/shared/messages"
	"github.com/coder/websocket"
	"golang.org/x/time/rate"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	rules := testRules()
	rules.PingDelay = 10 * time.Millisecond

	srv := NewServer(config.Server, rules, leveldata.Default())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Shutdown()
		ts.Close()
	})
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func write(t *testing.T, conn *websocket.Conn, codec messages.Codec, m messages.Message) {
	t.Helper()
	data, err := codec.Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	typ := websocket.MessageText
	if codec.Binary() {
		typ = websocket.MessageBinary
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(ctx, typ, data); err != nil {
		t.Fatalf("write %s: %v", m.MessageType(), err)
	}
}

func read(t *testing.T, conn *websocket.Conn) messages.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	typ, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	codec := messages.JSON
	if typ == websocket.MessageBinary {
		codec = messages.Msgpack
	}
	m, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	return m
}

func TestGatewayJoinAndPlay(t *testing.T) {
	srv, ts := newTestServer(t)

	c1 := dial(t, ts)
	write(t, c1, messages.JSON, &messages.Join{Match: "abc", User: &messages.UserInfo{Name: "Odin"}})
	w1, ok := read(t, c1).(*messages.Welcome)
	if !ok {
		t.Fatal("first message is not a welcome")
	}
	if w1.ID == "" || len(w1.Map) != 7 || w1.Round != 0 {
		t.Errorf("welcome = %+v", w1)
	}

	// Second client speaks msgpack and gets msgpack back.
	c2 := dial(t, ts)
	write(t, c2, messages.Msgpack, &messages.Join{Match: "abc"})
	w2, ok := read(t, c2).(*messages.Welcome)
	if !ok || w2.ID == w1.ID {
		t.Fatalf("second welcome = %+v", w2)
	}
	for _, c := range []*websocket.Conn{c1, c2} {
		if start, ok := read(t, c).(*messages.Start); !ok || start.Round != 1 {
			t.Fatalf("expected start of round 1, got %+v", start)
		}
	}

	room := srv.Rooms().Get("match-abc")
	if room == nil {
		t.Fatal("room match-abc not registered")
	}

	write(t, c1, messages.JSON, &messages.Input{Keys: messages.Keys{D: true}, Timestamp: 42})
	deadline := time.Now().Add(2 * time.Second)
	for {
		if pv, _ := room.Player(w1.ID); pv.Queued > 0 || pv.LastInput > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("input never reached the room")
		}
		time.Sleep(5 * time.Millisecond)
	}

	srv.Tick()
	snap, ok := read(t, c1).(*messages.Snapshot)
	if !ok {
		t.Fatal("expected a snapshot after the tick")
	}
	self, ok := snap.Player(w1.ID)
	if !ok || self.LastProcessedInput != 42 || self.Name != "Odin" {
		t.Errorf("self in snapshot = %+v", self)
	}
	if len(snap.Players) != 2 || snap.Round != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestGatewayIgnoresBadFramesAndPongs(t *testing.T) {
	_, ts := newTestServer(t)
	c := dial(t, ts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, frame := range []string{`{"type":`, `{"type":"teleport"}`, `{"type":"join"}`} {
		if err := c.Write(ctx, websocket.MessageText, []byte(frame)); err != nil {
			t.Fatal(err)
		}
	}

	write(t, c, messages.JSON, &messages.PingTest{Time: 1234.5})
	pong, ok := read(t, c).(*messages.PongTest)
	if !ok {
		t.Fatal("expected a pong")
	}
	if pong.ClientTime != 1234.5 || pong.ServerTime == 0 {
		t.Errorf("pong = %+v", pong)
	}
}

func TestGatewayDisconnectLeavesRoom(t *testing.T) {
	srv, ts := newTestServer(t)
	c := dial(t, ts)
	write(t, c, messages.JSON, &messages.Join{Match: "xyz"})
	read(t, c)

	room := srv.Rooms().Get("match-xyz")
	if room == nil || room.PlayerCount() != 1 {
		t.Fatal("player not in room")
	}

	c.Close(websocket.StatusNormalClosure, "bye")
	deadline := time.Now().Add(2 * time.Second)
	for room.PlayerCount() != 0 || srv.SessionCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("players=%d sessions=%d after disconnect", room.PlayerCount(), srv.SessionCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHealth(t *testing.T) {
	srv, ts := newTestServer(t)
	srv.Rooms().GetOrCreate("match-a")

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Rooms != 1 || body.Players != 0 {
		t.Errorf("health = %+v", body)
	}
	if _, err := time.Parse(time.RFC3339, body.Time); err != nil {
		t.Errorf("time %q: %v", body.Time, err)
	}
}

func TestSessionRateLimit(t *testing.T) {
	sess := &Session{limiter: rate.NewLimiter(rate.Every(time.Hour), 2)}
	for i, want := range []bool{true, true, false, false} {
		if got := sess.allow(); got != want {
			t.Errorf("message %d allowed = %v, want %v", i, got, want)
		}
	}
	if sess.dropped != 2 {
		t.Errorf("dropped = %d, want 2", sess.dropped)
	}
	if !(&Session{}).allow() {
		t.Error("session without a limiter dropped a message")
	}
}
