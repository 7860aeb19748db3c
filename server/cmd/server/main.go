package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/automoto/bouncerz-mp/config"
	"github.com/automoto/bouncerz-mp/server/core"
	"github.com/automoto/bouncerz-mp/shared/arena"
)

func main() {
	addr := flag.String("addr", config.Server.Addr, "Listen address")
	workers := flag.Int("workers", config.Server.TickWorkers, "Rooms ticked in parallel")
	mapName := flag.String("map", config.Server.MapName, "Level: empty for built-in, embedded name, or path to a .tmx file")
	minPlayers := flag.Int("minplayers", config.Match.MinPlayers, "Players needed to start a round")
	winScore := flag.Int("winscore", config.Match.WinningScore, "Round wins needed to take the match")
	maxRounds := flag.Int("maxrounds", config.Match.MaxRounds, "Round limit per match")
	sweep := flag.Duration("sweep", config.Server.SweepInterval, "Idle room sweep interval")
	master := flag.String("master", "", "Master server URL to register with (empty to skip)")
	name := flag.String("name", config.Server.Name, "Server name shown in the directory")
	public := flag.String("public", "", "WebSocket URL advertised to clients (default ws://localhost<addr>/ws)")
	region := flag.String("region", "", "Region shown in the directory")
	flag.Parse()

	cfg := config.Server
	cfg.Addr = *addr
	cfg.TickWorkers = *workers
	cfg.MapName = *mapName
	cfg.SweepInterval = *sweep
	cfg.MasterURL = *master
	cfg.Name = *name
	cfg.Region = *region
	cfg.PublicAddr = *public
	if cfg.PublicAddr == "" {
		cfg.PublicAddr = "ws://localhost" + cfg.Addr + "/ws"
	}

	rules := config.Match
	rules.MinPlayers = *minPlayers
	rules.WinningScore = *winScore
	rules.MaxRounds = *maxRounds

	layout, err := core.LoadLayout(cfg.MapName)
	if err != nil {
		log.Fatalf("Failed to load level: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := core.NewServer(cfg, rules, layout)

	log.Printf("Starting bouncerz server on %s (tick rate: %d/s, level: %s)",
		cfg.Addr, arena.TickRate, layout.Name)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
