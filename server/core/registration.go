package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/automoto/bouncerz-mp/shared/directory"
)

var errNotRegistered = errors.New("not registered with master")

// Registration advertises this server in the master's directory and keeps
// its room and player counts fresh.
type Registration struct {
	masterURL string
	serverID  string
	info      directory.RegisterRequest
	interval  time.Duration
	stats     func() Stats
	client    *http.Client
}

// NewRegistration reports stats to masterURL every interval.
func NewRegistration(masterURL string, info directory.RegisterRequest, interval time.Duration, stats func() Stats) *Registration {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Registration{
		masterURL: masterURL,
		info:      info,
		interval:  interval,
		stats:     stats,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Run registers and heartbeats until ctx is done. Failures are logged and
// retried on the next beat; they never stop the game server.
func (r *Registration) Run(ctx context.Context) {
	if err := r.register(ctx); err != nil {
		log.Printf("[registration] initial registration failed: %v", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.sendHeartbeat(ctx); err != nil {
				log.Printf("[registration] heartbeat failed: %v", err)
			}
		}
	}
}

// ServerID is the id the master assigned, empty until registered.
func (r *Registration) ServerID() string {
	return r.serverID
}

func (r *Registration) register(ctx context.Context) error {
	req := r.info
	st := r.stats()
	req.Rooms, req.Players = st.Rooms, st.Players

	resp, err := r.post(ctx, directory.PathRegister, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result directory.RegisterResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	r.serverID = result.ID
	log.Printf("[registration] registered with master (id=%s)", r.serverID)
	return nil
}

func (r *Registration) sendHeartbeat(ctx context.Context) error {
	if r.serverID == "" {
		return r.register(ctx)
	}

	st := r.stats()
	resp, err := r.post(ctx, directory.PathHeartbeat, directory.HeartbeatRequest{
		ID:      r.serverID,
		Rooms:   st.Rooms,
		Players: st.Players,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		log.Println("[registration] master lost our registration, re-registering")
		r.serverID = ""
		if err := r.register(ctx); err != nil {
			return fmt.Errorf("%w: %v", errNotRegistered, err)
		}
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return nil
}

func (r *Registration) post(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.masterURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post: %w", err)
	}
	return resp, nil
}
