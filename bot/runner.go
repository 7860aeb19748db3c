package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/automoto/bouncerz-mp/config"
	"github.com/automoto/bouncerz-mp/network"
	"github.com/automoto/bouncerz-mp/shared/arena"
	"github.com/automoto/bouncerz-mp/shared/leveldata"
	"github.com/automoto/bouncerz-mp/shared/messages"
)

const pingInterval = 2 * time.Second

var ErrDisconnected = errors.New("disconnected from server")

// Options configures one bot.
type Options struct {
	URL        string
	Match      string
	Profile    network.Profile
	Difficulty config.BotDifficulty
	Codec      messages.Codec
}

// Result summarizes a bot's match.
type Result struct {
	PlayerID string
	Winner   string
	Rounds   int
	Won      bool
}

// LayoutFromWelcome rebuilds the arena layout a welcome describes.
func LayoutFromWelcome(w messages.Welcome) leveldata.Layout {
	return leveldata.Layout{
		Name:      "remote",
		Platforms: append([]leveldata.Platform(nil), w.Map...),
		Spawn:     w.Spawn,
	}
}

// Run plays one match: connect, join, then predict and send inputs at the
// tick rate until the match is won or ctx is done.
func Run(ctx context.Context, opts Options) (Result, error) {
	client := network.NewClient(opts.Codec)
	if err := client.Connect(ctx, opts.URL); err != nil {
		return Result{}, err
	}
	defer client.Disconnect()

	if err := client.Join(opts.Match, opts.Profile); err != nil {
		return Result{}, fmt.Errorf("join %s: %w", opts.Match, err)
	}

	var welcome messages.Welcome
	select {
	case <-ctx.Done():
		return Result{}, nil
	case <-client.Done():
		return Result{}, ErrDisconnected
	case welcome = <-client.Welcomes():
	}

	tickRate := welcome.TickRate
	if tickRate <= 0 {
		tickRate = arena.TickRate
	}
	layout := LayoutFromWelcome(welcome)
	pred := network.NewPredictor(welcome.ID, layout, config.Client)
	brain := NewBrain(opts.Difficulty, layout)
	res := Result{PlayerID: welcome.ID, Rounds: welcome.Round}

	log.Printf("[bot] %s (%s) joined %s", opts.Profile.Name, welcome.ID, opts.Match)

	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()
	pings := time.NewTicker(pingInterval)
	defer pings.Stop()

	var last *messages.Snapshot
	for {
		select {
		case <-ctx.Done():
			return res, nil
		case <-client.Done():
			return res, ErrDisconnected
		case now := <-pings.C:
			_ = client.Ping(now)
		case now := <-ticker.C:
			for _, ev := range client.DrainEvents() {
				switch m := ev.(type) {
				case *messages.Start:
					res.Rounds = m.Round
					pred.Reset(layout.Spawn.X, layout.Spawn.Y)
				case *messages.RoundWinner:
					log.Printf("[bot] %s: round %d winner %s", opts.Profile.Name, m.Round, m.Winner)
				case *messages.PongTest:
					log.Printf("[bot] %s: latency %.0fms", opts.Profile.Name, float64(now.UnixMilli())-m.ClientTime)
				case *messages.MatchWinner:
					res.Winner = m.Winner
					res.Won = m.Winner == welcome.ID
					return res, nil
				}
			}

			if snap := client.LatestSnapshot(); snap != nil {
				last = snap
				pred.Reconcile(snap, now)
			}

			local := pred.Local()
			keys := brain.Decide(welcome.ID, local.X, local.Y, last)
			if err := client.SendInput(pred.Predict(keys, now)); err != nil {
				return res, fmt.Errorf("send input: %w", err)
			}
		}
	}
}
