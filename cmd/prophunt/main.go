// Command prophunt boots the 3-D prop-hunt authoritative game server: loads
// its config, reports lobby-ready, and runs the fixed-tick simulation loop
// (spec §6.2 "Long-running daemon; no positional args").
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/outpost-games/hideforge/internal/config"
	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/lobby"
	"github.com/outpost-games/hideforge/internal/session"
	"github.com/outpost-games/hideforge/internal/state/prophunt"
	"github.com/outpost-games/hideforge/internal/transport"
)

const tickInterval = 50 * time.Millisecond

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	if err := run(log); err != nil {
		log.Error().Err(err).Msg("prophunt exited")
		os.Exit(1)
	}
}

func run(log zerolog.Logger) error {
	configPath := envOr("CONFIG_PATH", config.DefaultPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	port := envOr("PORT", "3000")
	endpoint := os.Getenv("RIVET_API_ENDPOINT")
	token := os.Getenv("RIVET_TOKEN")

	allocator := entity.NewIDAllocator()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	mapName, err := pickMap(cfg, rng)
	if err != nil {
		return err
	}
	log.Info().Str("map", mapName).Msg("selected map")

	machine := prophunt.New(cfg, mapName, allocator, rng)

	sessionsCh := make(chan *session.Session, 64)
	acceptor := transport.NewAcceptor(":"+port, "/ws", sessionsCh, log)

	listener, err := acceptor.Bind()
	if err != nil {
		return fmt.Errorf("bind listener: %w", err)
	}
	go func() {
		if err := acceptor.ServeListener(listener); err != nil {
			log.Error().Err(err).Msg("acceptor stopped")
		}
	}()

	lobbyClient := lobby.New(endpoint, token, log)
	ctx := context.Background()
	if err := lobbyClient.Ready(ctx); err != nil {
		log.Warn().Err(err).Msg("lobby-ready notification failed")
	}

	loop := newSimLoop(machine, cfg, lobbyClient, log)
	loop.run(sessionsCh)
	return nil
}

func pickMap(cfg *config.Config, rng *rand.Rand) (string, error) {
	names := make([]string, 0, len(cfg.Maps))
	for name := range cfg.Maps {
		names = append(names, name)
	}
	if len(names) == 0 {
		return "", fmt.Errorf("config defines no maps")
	}
	return names[rng.Intn(len(names))], nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
