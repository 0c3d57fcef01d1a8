// Package lobby implements the three single-shot outbound calls a game
// server makes to its matchmaker lobby over its lifetime: ready, a
// player's connect, and a player's disconnect (spec §4.J, §6.4).
package lobby

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/outpost-games/hideforge/internal/apperr"
)

// Client calls the lobby-lifecycle HTTP API with bounded retry and bearer
// auth (spec §6.4).
type Client struct {
	baseURL string
	token   string
	http    *retryablehttp.Client
	log     zerolog.Logger
}

// New returns a Client targeting baseURL (RIVET_API_ENDPOINT) authenticated
// with token (RIVET_TOKEN). Retry logging is routed through log at debug
// level rather than retryablehttp's default stderr logger.
func New(baseURL, token string, log zerolog.Logger) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.Logger = retryableLogAdapter{log}
	return &Client{baseURL: baseURL, token: token, http: httpClient, log: log}
}

// Ready notifies the matchmaker the lobby is listening and can accept
// players. Called exactly once at boot after the listener is bound.
func (c *Client) Ready(ctx context.Context) error {
	return c.post(ctx, "/matchmaker/lobbies/ready", struct{}{})
}

type playerTokenBody struct {
	PlayerToken string `json:"player_token"`
}

// PlayerConnected notifies the matchmaker a player successfully
// authenticated.
func (c *Client) PlayerConnected(ctx context.Context, playerToken string) error {
	return c.post(ctx, "/matchmaker/players/connected", playerTokenBody{PlayerToken: playerToken})
}

// PlayerDisconnected notifies the matchmaker an authenticated player's
// session closed. Failure here is log-only per §4.J: it must never be
// fatal to the process, since the player is already gone.
func (c *Client) PlayerDisconnected(ctx context.Context, playerToken string) {
	if err := c.post(ctx, "/matchmaker/players/disconnected", playerTokenBody{PlayerToken: playerToken}); err != nil {
		c.log.Warn().Err(err).Msg("player-disconnected notification failed")
	}
}

func (c *Client) post(ctx context.Context, path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperr.NewExternal("encode lobby request body", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return apperr.NewExternal("build lobby request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.NewExternal(fmt.Sprintf("lobby request %s", path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperr.NewExternal(fmt.Sprintf("lobby request %s returned status %d", path, resp.StatusCode), nil)
	}
	return nil
}

// retryableLogAdapter routes retryablehttp's internal retry/backoff logging
// through zerolog instead of its default stderr logger.
type retryableLogAdapter struct{ log zerolog.Logger }

func (a retryableLogAdapter) Printf(format string, args ...interface{}) {
	a.log.Debug().Msgf(format, args...)
}
