// Command gridhold boots the 2-D grid survival server: a single
// continuously running shared round that players join and leave freely
// (spec §2, §4.F grid variant; see SPEC_FULL.md's Open Questions decisions).
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/lobby"
	"github.com/outpost-games/hideforge/internal/session"
	"github.com/outpost-games/hideforge/internal/state/gridhold"
	"github.com/outpost-games/hideforge/internal/transport"
)

const tickInterval = 50 * time.Millisecond

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	if err := run(log); err != nil {
		log.Error().Err(err).Msg("gridhold exited")
		os.Exit(1)
	}
}

func run(log zerolog.Logger) error {
	port := envOr("PORT", "3000")
	endpoint := os.Getenv("RIVET_API_ENDPOINT")
	token := os.Getenv("RIVET_TOKEN")

	allocator := entity.NewIDAllocator()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	machine := gridhold.New(allocator, rng)

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

	loop := newSimLoop(machine, lobbyClient, log)
	loop.run(sessionsCh)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
