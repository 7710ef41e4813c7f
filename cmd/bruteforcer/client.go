package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

// Client plays one session at a time against the REST API
type Client struct {
	baseURL   string
	sessionID string
	images    []int
	matched   map[int]bool
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateSession starts a game and remembers its layout. Rows and cols win
// over preset when set.
func (c *Client) CreateSession(ctx context.Context, opts service.StartOptions) (*service.StartResult, error) {
	var start service.StartResult
	if err := c.post(ctx, "/api/sessions", opts, http.StatusCreated, &start); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = start.SessionID
	c.images = make([]int, len(start.Tiles))
	c.matched = make(map[int]bool)
	for _, tile := range start.Tiles {
		c.images[tile.ID] = tile.ImageID
	}
	return &start, nil
}

// GetState fetches the current session snapshot
func (c *Client) GetState(ctx context.Context) (*service.SessionInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/sessions/%s", c.baseURL, c.sessionID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get state failed: %s - %s", resp.Status, string(body))
	}

	var info service.SessionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return &info, nil
}

// Flip sends one flip and converts the reply into an engine result, filling
// in images from the start payload
func (c *Client) Flip(ctx context.Context, tileID int, firstTileID *int) (engine.FlipResult, error) {
	body := map[string]any{"tileId": tileID}
	if firstTileID != nil {
		body["firstTileId"] = *firstTileID
	}

	var resp service.FlipResponse
	url := fmt.Sprintf("/api/sessions/%s/flip", c.sessionID)
	if err := c.post(ctx, url, body, http.StatusOK, &resp); err != nil {
		return engine.FlipResult{}, fmt.Errorf("flip tile %d: %w", tileID, err)
	}

	if resp.Match {
		c.matched[resp.Tile1ID], c.matched[resp.Tile2ID] = true, true
	}
	res := engine.FlipResult{Outcome: resp.Outcome, Tile1: c.tile(resp.Tile1ID), Guesses: resp.Guesses}
	if resp.Tile2ID >= 0 {
		t2 := c.tile(resp.Tile2ID)
		res.Tile2 = &t2
	}
	return res, nil
}

// DeleteSession removes the current session from the server
func (c *Client) DeleteSession(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/api/sessions/%s", c.baseURL, c.sessionID), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete session failed: %s", resp.Status)
	}
	return nil
}

func (c *Client) tile(id int) engine.Tile {
	t := engine.Tile{ID: id, Matched: c.matched[id]}
	if id >= 0 && id < len(c.images) {
		t.ImageID = c.images[id]
	}
	return t
}

func (c *Client) post(ctx context.Context, path string, payload any, wantStatus int, result any) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%s - %s", resp.Status, bytes.TrimSpace(body))
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
