package bot

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/automoto/bouncerz-mp/config"
	"github.com/automoto/bouncerz-mp/network"
	"github.com/automoto/bouncerz-mp/server/core"
	"github.com/automoto/bouncerz-mp/shared/leveldata"
	"github.com/automoto/bouncerz-mp/shared/messages"
	"golang.org/x/sync/errgroup"
)

func TestRunPlaysAgainstServer(t *testing.T) {
	srv := core.NewServer(config.Server, config.Match, leveldata.Default())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	defer srv.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	// Tick the rooms by hand at the game rate.
	go func() {
		ticker := time.NewTicker(time.Second / 60)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.Tick()
			}
		}
	}()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	codecs := []messages.Codec{messages.JSON, messages.Msgpack}

	var mu sync.Mutex
	var results []Result
	var g errgroup.Group
	for i, codec := range codecs {
		g.Go(func() error {
			res, err := Run(ctx, Options{
				URL:        url,
				Match:      "bots",
				Profile:    network.Profile{Name: "bot", Color: "#fff"},
				Difficulty: config.BotDifficultyHard,
				Codec:      codec,
			})
			if err != nil {
				t.Errorf("bot %d: %v", i, err)
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}

	// Both bots end up in one playing room and their inputs get processed.
	deadline := time.Now().Add(time.Second)
	for {
		room := srv.Rooms().Get("match-bots")
		if room != nil && room.Round() >= 1 {
			snap := room.Snapshot()
			processed := 0
			for _, p := range snap.Players {
				if p.LastProcessedInput > 0 {
					processed++
				}
			}
			if processed == 2 {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("bots never played a round")
		}
		time.Sleep(10 * time.Millisecond)
	}

	_ = g.Wait()
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].PlayerID == "" || results[0].PlayerID == results[1].PlayerID {
		t.Errorf("player ids = %q, %q", results[0].PlayerID, results[1].PlayerID)
	}
}
