package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os/signal"
	"syscall"
	"time"

	"github.com/automoto/bouncerz-mp/bot"
	"github.com/automoto/bouncerz-mp/config"
	"github.com/automoto/bouncerz-mp/network"
	"github.com/automoto/bouncerz-mp/shared/messages"
	"golang.org/x/sync/errgroup"
)

func main() {
	server := flag.String("server", "ws://localhost:8080/ws", "Server WebSocket URL")
	match := flag.String("match", "", "Match handle (default: random)")
	bots := flag.Int("bots", 2, "Number of bots to connect")
	difficulty := flag.String("difficulty", "normal", "Bot difficulty: easy, normal, hard")
	binary := flag.Bool("msgpack", false, "Use the binary msgpack protocol instead of JSON")
	appName := flag.String("app", "bouncerz", "Application name for saved bot profiles")
	master := flag.String("master", "", "Master server URL; picks a listed server instead of -server")
	region := flag.String("region", "", "Preferred region when picking from the master")
	flag.Parse()

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	if *match == "" {
		*match = fmt.Sprintf("bots-%04d", rng.IntN(10000))
	}

	codec := messages.JSON
	if *binary {
		codec = messages.Msgpack
	}

	store, err := network.OpenProfileStore(*appName)
	if err != nil {
		log.Printf("Warning: Could not initialize persistence: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *master != "" {
		info, err := network.PickServer(ctx, *master, *region)
		if err != nil {
			log.Fatalf("Failed to pick a server: %v", err)
		}
		log.Printf("Using %s (%s, %d rooms, %d players)", info.Name, info.Address, info.Rooms, info.Players)
		*server = info.Address
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < *bots; i++ {
		profile := network.RandomProfile(rng)
		if store != nil {
			if p, err := store.LoadOrCreate(fmt.Sprintf("bot%d", i+1), rng); err != nil {
				log.Printf("Warning: Could not load bot profile: %v", err)
			} else {
				profile = p
			}
		}

		opts := bot.Options{
			URL:        *server,
			Match:      *match,
			Profile:    profile,
			Difficulty: config.ParseBotDifficulty(*difficulty),
			Codec:      codec,
		}
		g.Go(func() error {
			res, err := bot.Run(ctx, opts)
			if err != nil {
				return fmt.Errorf("bot %s: %w", opts.Profile.Name, err)
			}
			if res.Winner != "" {
				log.Printf("[bot] %s finished after %d rounds (won: %t)", opts.Profile.Name, res.Rounds, res.Won)
			}
			return nil
		})
	}

	log.Printf("Running %d bots in match %q against %s", *bots, *match, *server)
	if err := g.Wait(); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
}
