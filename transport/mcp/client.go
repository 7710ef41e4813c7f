package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

// Client is a thin MCP client that proxies to the REST API.
//
// Like the browser client it keeps each session's image ids locally and
// only reveals the tiles the agent flips.
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer

	mu        sync.Mutex
	images    map[string][]int // session id -> image id by tile id
	order     []string         // cache keys, oldest first
	maxCached int
}

// maxCachedSessions bounds the image cache. Oldest entries go first.
const maxCachedSessions = 1000

// apiError is a non-2xx reply from the REST API
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	if e.message != "" {
		return e.message
	}
	return fmt.Sprintf("API error: %d", e.status)
}

func isNotFound(err error) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr) && apiErr.status == http.StatusNotFound
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		images:    make(map[string][]int),
		maxCached: maxCachedSessions,
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Memory Match Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Memory Match Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Find every pair of matching tiles using as few guesses as possible.

AVAILABLE TOOLS:
- start_game: Start a new game (rows/cols or a preset)
- flip_tile: Flip a tile; pass first_tile_id for the second flip of a turn
- get_session: Show the board of a session
- list_sessions: List all active sessions
- delete_session: End a session
- list_presets: List available board presets
- game_instructions: Get the full rules and strategy tips`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	sessionIDProp := map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start a new memory game. Explicit rows and cols win over a preset; with neither the default preset is used.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"rows": map[string]interface{}{
					"type":        "integer",
					"description": "Board rows (optional, rows*cols must be even)",
				},
				"cols": map[string]interface{}{
					"type":        "integer",
					"description": "Board columns (optional)",
				},
				"preset": map[string]interface{}{
					"type":        "string",
					"description": "Preset name, see list_presets (optional)",
				},
			},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "flip_tile",
		Description: "Flip a tile. Omit first_tile_id for the first flip of a turn; pass it for the second flip to check for a match.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"tile_id": map[string]interface{}{
					"type":        "integer",
					"description": "Tile to flip",
				},
				"first_tile_id": map[string]interface{}{
					"type":        "integer",
					"description": "The tile flipped first this turn (second flip only)",
				},
			},
			Required: []string{"session_id", "tile_id"},
		},
	}, c.handleFlipTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get the board and score of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "End a game session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, c.handleDeleteSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_presets",
		Description: "List available board presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPresets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the game rules and strategy tips",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		return &apiError{status: resp.StatusCode, message: errResp["error"]}
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument; ok is false when it is absent
func intArg(args map[string]interface{}, name string) (int, bool, error) {
	raw, exists := args[name]
	if !exists || raw == nil {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, false, fmt.Errorf("%s must be an integer", name)
		}
		return int(v), true, nil
	case int:
		return v, true, nil
	default:
		return 0, false, fmt.Errorf("%s must be an integer", name)
	}
}

func cacheKey(sessionID string) string {
	return strings.ToLower(sessionID)
}

func (c *Client) remember(sessionID string, images []int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(sessionID)
	if _, ok := c.images[key]; !ok {
		for c.maxCached > 0 && len(c.order) >= c.maxCached {
			delete(c.images, c.order[0])
			c.order = c.order[1:]
		}
		c.order = append(c.order, key)
	}
	c.images[key] = images
}

func (c *Client) forget(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(sessionID)
	delete(c.images, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// sessionCall is apiCall for a single session; a session the server no
// longer knows is dropped from the cache
func (c *Client) sessionCall(ctx context.Context, sessionID, method, path string, body interface{}, result interface{}) error {
	err := c.apiCall(ctx, method, path, body, result)
	if isNotFound(err) {
		c.forget(sessionID)
	}
	return err
}

// imagesFor returns the cached image ids of a session, fetching them from
// the session snapshot for games this client did not start
func (c *Client) imagesFor(ctx context.Context, sessionID string) ([]int, error) {
	c.mu.Lock()
	images, ok := c.images[cacheKey(sessionID)]
	c.mu.Unlock()
	if ok {
		return images, nil
	}

	var info service.SessionInfo
	if err := c.sessionCall(ctx, sessionID, "GET", "/api/sessions/"+sessionID, nil, &info); err != nil {
		return nil, err
	}
	images = make([]int, len(info.Tiles))
	for _, tile := range info.Tiles {
		if tile.ID >= 0 && tile.ID < len(images) {
			images[tile.ID] = tile.ImageID
		}
	}
	c.remember(sessionID, images)
	return images, nil
}

// Tool handlers

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var opts service.StartOptions
	var err error
	if opts.Rows, _, err = intArg(args, "rows"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if opts.Cols, _, err = intArg(args, "cols"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts.Preset, _ = args["preset"].(string)

	var game service.StartResult
	if err := c.apiCall(ctx, "POST", "/api/sessions", opts, &game); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	images := make([]int, len(game.Tiles))
	tiles := make([]engine.Tile, len(game.Tiles))
	for i, tile := range game.Tiles {
		if tile.ID >= 0 && tile.ID < len(images) {
			images[tile.ID] = tile.ImageID
		}
		tiles[i] = engine.Tile{ID: tile.ID}
	}
	c.remember(game.SessionID, images)

	var result strings.Builder
	fmt.Fprintf(&result, "Started session: %s\n", game.SessionID)
	if game.Preset != "" {
		fmt.Fprintf(&result, "Preset: %s\n", game.Preset)
	}
	fmt.Fprintf(&result, "Board: %dx%d, %d pairs to find\n\n", game.Rows, game.Cols, len(tiles)/2)
	result.WriteString(formatBoard(game.Rows, game.Cols, tiles))
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleFlipTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	tileID, ok, err := intArg(args, "tile_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError("tile_id is required"), nil
	}

	body := map[string]int{"tileId": tileID}
	firstTileID, hasFirst, err := intArg(args, "first_tile_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if hasFirst {
		body["firstTileId"] = firstTileID
	}

	var flip service.FlipResponse
	if err := c.sessionCall(ctx, sessionID, "POST", fmt.Sprintf("/api/sessions/%s/flip", sessionID), body, &flip); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Without images the flip is still reported, just not what it revealed
	images, _ := c.imagesFor(ctx, sessionID)

	return mcp.NewToolResultText(formatFlip(&flip, images)), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	if err := c.sessionCall(ctx, sessionID, "GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Total    int                   `json:"total"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.Complete {
			status = "complete"
		}
		fmt.Fprintf(&result, "- %s (%dx%d, %d/%d pairs, %d guesses, %s, last played %s)\n",
			s.ID, s.Rows, s.Cols, s.MatchedPairs, s.TotalPairs, s.Guesses, status,
			s.LastAccessedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	var response map[string]string
	if err := c.sessionCall(ctx, sessionID, "DELETE", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c.forget(sessionID)

	return mcp.NewToolResultText(response["message"]), nil
}

func (c *Client) handleListPresets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var presets []service.PresetInfo
	if err := c.apiCall(ctx, "GET", "/api/presets", nil, &presets); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Presets:\n\n")
	for _, p := range presets {
		fmt.Fprintf(&result, "- %s: %dx%d (%d pairs)", p.PresetID, p.Rows, p.Cols, p.Pairs)
		if p.Description != "" {
			fmt.Fprintf(&result, " - %s", p.Description)
		}
		result.WriteString("\n")
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🧠 Memory Match Game - Complete Instructions

GAME OBJECTIVE:
Every image appears on exactly two tiles. Find all the pairs with as few guesses as possible.

TURNS:
1. Flip a tile with flip_tile (no first_tile_id). Its image is revealed.
2. Flip a second tile with flip_tile, passing first_tile_id from step 1.
   • MATCH: both tiles stay face up and are marked matched.
   • MISS: both tiles turn face down again.
   Every second flip counts as one guess.

BOARD:
• Tiles are numbered row by row starting at 0.
• get_session shows hidden tiles by id and matched tiles as [image].
• Flipping an already matched tile as the first pick does nothing.

VICTORY CONDITIONS:
• The game is complete when every pair is matched.
• Your score is the number of guesses. The minimum equals the number of pairs.

STRATEGY:
• Remember every image you have seen and the tile it was on.
• When a first flip reveals an image you have seen before, flip its partner.
• Otherwise flip a tile you have never seen, so every guess teaches you something.

Good luck!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var result strings.Builder
	fmt.Fprintf(&result, "Session: %s\n", session.ID)
	if session.Preset != "" {
		fmt.Fprintf(&result, "Preset: %s\n", session.Preset)
	}
	fmt.Fprintf(&result, "Created: %s\n", session.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&result, "Pairs: %d/%d | Guesses: %d\n\n", session.MatchedPairs, session.TotalPairs, session.Guesses)
	result.WriteString(formatBoard(session.Rows, session.Cols, session.Tiles))
	if session.Complete {
		fmt.Fprintf(&result, "\n🎉 COMPLETE in %d guesses!", session.Guesses)
	}
	return result.String()
}

// formatBoard draws the grid row by row. Hidden tiles show their id and
// matched tiles show [image id].
func formatBoard(rows, cols int, tiles []engine.Tile) string {
	if rows <= 0 || cols <= 0 || rows > len(tiles) || cols > len(tiles) || len(tiles) != rows*cols {
		return "No board available\n"
	}

	var result strings.Builder
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			tile := tiles[y*cols+x]
			if tile.Matched {
				result.WriteString(fmt.Sprintf("%6s", fmt.Sprintf("[%d]", tile.ImageID)))
			} else {
				result.WriteString(fmt.Sprintf("%6d", tile.ID))
			}
		}
		result.WriteString("\n")
	}
	return result.String()
}

func imageOf(images []int, id int) string {
	if id >= 0 && id < len(images) {
		return fmt.Sprintf("image %d", images[id])
	}
	return "image ?"
}

func formatFlip(flip *service.FlipResponse, images []int) string {
	switch flip.Outcome {
	case engine.OutcomeFirst:
		return fmt.Sprintf("Tile %d shows %s.\nFlip a second tile with first_tile_id=%d.",
			flip.Tile1ID, imageOf(images, flip.Tile1ID), flip.Tile1ID)
	case engine.OutcomeMatch:
		return fmt.Sprintf("✓ MATCH: tiles %d and %d both show %s.\nGuesses: %d",
			flip.Tile1ID, flip.Tile2ID, imageOf(images, flip.Tile2ID), flip.Guesses)
	case engine.OutcomeMiss:
		return fmt.Sprintf("✗ MISS: tile %d shows %s, tile %d shows %s. Both are face down again.\nGuesses: %d",
			flip.Tile1ID, imageOf(images, flip.Tile1ID), flip.Tile2ID, imageOf(images, flip.Tile2ID), flip.Guesses)
	case engine.OutcomeComplete:
		return fmt.Sprintf("✓ MATCH: tiles %d and %d both show %s.\n🎉 COMPLETE! All pairs found in %d guesses.",
			flip.Tile1ID, flip.Tile2ID, imageOf(images, flip.Tile2ID), flip.Guesses)
	default:
		return fmt.Sprintf("Unknown outcome %q", flip.Outcome)
	}
}
