package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/memorygame/api"
	"github.com/wricardo/mcp-training/memorygame/game/config"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
	"github.com/wricardo/mcp-training/memorygame/game/session"
	"github.com/wricardo/mcp-training/memorygame/transport/mcp"
	"github.com/wricardo/mcp-training/memorygame/validate"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}

	expectedVersion := "1.0.0"
	if Version != expectedVersion {
		t.Errorf("Expected version %s, got %s", expectedVersion, Version)
	}

	expectedAppName := "Memory Match Game Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestNewApp_Commands(t *testing.T) {
	app := newApp()

	names := make(map[string]bool)
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	for _, want := range []string{"serve", "mcp", "play", "presets", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func testSettings(t *testing.T, store string) *config.Settings {
	t.Helper()
	dir := t.TempDir()
	return &config.Settings{
		Host:            "localhost",
		Port:            8080,
		PresetDir:       filepath.Join(dir, "presets"),
		Store:           store,
		SessionsDir:     filepath.Join(dir, "sessions"),
		SQLitePath:      filepath.Join(dir, "sessions.db"),
		SessionTTL:      time.Hour,
		CleanupInterval: time.Minute,
		MaxSessions:     10,
	}
}

func TestInitializeServices(t *testing.T) {
	for _, store := range []string{config.StoreMemory, config.StoreFile, config.StoreSQLite} {
		t.Run(store, func(t *testing.T) {
			settings := testSettings(t, store)

			svc, err := initializeServices(settings)
			require.NoError(t, err)
			t.Cleanup(func() { svc.Close() })

			assert.Equal(t, store == config.StoreMemory, svc.persistence == nil)

			start, err := svc.game.StartGame(context.Background(), service.StartOptions{Rows: 2, Cols: 2})
			require.NoError(t, err)
			assert.Len(t, start.Tiles, 4)
			assert.Equal(t, 1, svc.sessions.Count())
		})
	}
}

func TestInitializeServices_ReloadsPersistedSessions(t *testing.T) {
	for _, store := range []string{config.StoreFile, config.StoreSQLite} {
		t.Run(store, func(t *testing.T) {
			settings := testSettings(t, store)

			svc, err := initializeServices(settings)
			require.NoError(t, err)
			start, err := svc.game.StartGame(context.Background(), service.StartOptions{Preset: "2x2"})
			require.NoError(t, err)
			require.NoError(t, svc.Close())

			reopened, err := initializeServices(settings)
			require.NoError(t, err)
			t.Cleanup(func() { reopened.Close() })

			info, err := reopened.game.GetSession(context.Background(), start.SessionID)
			require.NoError(t, err)
			assert.Equal(t, "2x2", info.Preset)
			assert.Equal(t, 2, info.TotalPairs)
		})
	}
}

func TestInitializeServices_Errors(t *testing.T) {
	t.Run("preset path is a file", func(t *testing.T) {
		settings := testSettings(t, config.StoreMemory)
		require.NoError(t, os.WriteFile(settings.SQLitePath, []byte("x"), 0644))
		settings.PresetDir = settings.SQLitePath

		_, err := initializeServices(settings)
		assert.Error(t, err)
	})

	t.Run("unknown store", func(t *testing.T) {
		settings := testSettings(t, "redis")

		_, err := initializeServices(settings)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis")
	})
}

func TestSessionCleanupRoutine_StopsOnCancel(t *testing.T) {
	manager := session.NewManager()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, manager, time.Millisecond, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine did not stop")
	}
}

func TestMCPHandler(t *testing.T) {
	handler := mcpHandler(mcp.NewClient("http://localhost:0"))

	t.Run("GET not allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("tools/list", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "flip_tile")
		assert.Contains(t, w.Body.String(), "start_game")
	})
}

func TestNewRouter(t *testing.T) {
	svc, err := initializeServices(testSettings(t, config.StoreMemory))
	require.NoError(t, err)

	router := newRouter(api.NewServer(svc.game, nil), mcp.NewClient("http://localhost:0"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mcp", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestExternalAPIAvailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	assert.True(t, externalAPIAvailable(ts.URL))
	assert.False(t, externalAPIAvailable(ts.URL+"/nothing"))
}

func TestStartInternalServer(t *testing.T) {
	url, shutdown, err := startInternalServer(context.Background(), testSettings(t, config.StoreMemory))
	require.NoError(t, err)
	defer shutdown()

	assert.True(t, externalAPIAvailable(url))
}

func TestParseTurn(t *testing.T) {
	tests := []struct {
		line    string
		a, b    int
		wantErr string
	}{
		{line: "3 7", a: 3, b: 7},
		{line: "3,7", a: 3, b: 7},
		{line: " 0\t15 ", a: 0, b: 15},
		{line: "3", wantErr: "enter two tile ids"},
		{line: "1 2 3", wantErr: "enter two tile ids"},
		{line: "a 2", wantErr: `"a" is not a tile id`},
		{line: "2 b", wantErr: `"b" is not a tile id`},
		{line: "4 4", wantErr: "pick two different tiles"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			a, b, err := parseTurn(tt.line)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.a, a)
			assert.Equal(t, tt.b, b)
		})
	}
}

func TestTerminalGame_Render(t *testing.T) {
	g := newTerminalGame(&service.StartResult{
		SessionID: "s",
		Rows:      2,
		Cols:      2,
		Tiles:     []service.TileView{{ID: 0, ImageID: 1}, {ID: 1, ImageID: 2}, {ID: 2, ImageID: 2}, {ID: 3, ImageID: 1}},
	})
	g.shown[0], g.shown[3] = true, true

	var buf bytes.Buffer
	g.render(&buf, 1)

	assert.Equal(t, "   [1]   [2]\n     2   [1]\n", buf.String())
}

// scriptedService feeds turns into input once the board is known
type scriptedService struct {
	service.GameService
	input  *bytes.Buffer
	script func(pairs map[int][]int) string
}

func (s *scriptedService) StartGame(ctx context.Context, opts service.StartOptions) (*service.StartResult, error) {
	start, err := s.GameService.StartGame(ctx, opts)
	if err != nil {
		return nil, err
	}
	pairs := make(map[int][]int)
	for _, tile := range start.Tiles {
		pairs[tile.ImageID] = append(pairs[tile.ImageID], tile.ID)
	}
	s.input.WriteString(s.script(pairs))
	return start, nil
}

func newScriptedService(t *testing.T, script func(pairs map[int][]int) string) (*scriptedService, *bytes.Buffer) {
	t.Helper()
	presets, err := config.NewManager(t.TempDir())
	require.NoError(t, err)

	input := &bytes.Buffer{}
	return &scriptedService{
		GameService: service.NewGameService(session.NewManager(), presets),
		input:       input,
		script:      script,
	}, input
}

func TestPlayInteractive_Complete(t *testing.T) {
	svc, input := newScriptedService(t, func(pairs map[int][]int) string {
		var b strings.Builder
		b.WriteString("hello\n")
		b.WriteString("0 9\n")
		// a miss first: one tile from each pair
		fmt.Fprintf(&b, "%d %d\n", pairs[1][0], pairs[2][0])
		fmt.Fprintf(&b, "%d %d\n", pairs[1][0], pairs[1][1])
		fmt.Fprintf(&b, "%d %d\n", pairs[1][0], pairs[2][1])
		fmt.Fprintf(&b, "%d %d\n", pairs[2][0], pairs[2][1])
		return b.String()
	})

	var out bytes.Buffer
	err := playInteractive(context.Background(), svc, service.StartOptions{Rows: 2, Cols: 2}, input, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Memory Match 2x2: find 2 pairs")
	assert.Contains(t, text, "enter two tile ids")
	assert.Contains(t, text, engine.ErrTileOutOfRange.Error())
	assert.Contains(t, text, "Miss. (1 guesses)")
	assert.Contains(t, text, "Match! (2 guesses)")
	assert.Contains(t, text, "That tile is already matched")
	assert.Contains(t, text, "All pairs found in 3 guesses!")
}

func TestPlayInteractive_Quit(t *testing.T) {
	svc, input := newScriptedService(t, func(map[int][]int) string { return "q\n" })

	var out bytes.Buffer
	err := playInteractive(context.Background(), svc, service.StartOptions{Preset: "2x2"}, input, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Bye!")
}

func TestPlayInteractive_EndOfInput(t *testing.T) {
	svc, input := newScriptedService(t, func(map[int][]int) string { return "" })

	var out bytes.Buffer
	err := playInteractive(context.Background(), svc, service.StartOptions{Rows: 2, Cols: 2}, input, &out)
	assert.NoError(t, err)
}

func TestPlayInteractive_InvalidBoard(t *testing.T) {
	svc, input := newScriptedService(t, func(map[int][]int) string { return "" })

	err := playInteractive(context.Background(), svc, service.StartOptions{Rows: 3, Cols: 3}, input, &bytes.Buffer{})
	assert.ErrorIs(t, err, engine.ErrInvalidConfiguration)
}

func TestPlayAuto(t *testing.T) {
	svc, _ := newScriptedService(t, func(map[int][]int) string { return "" })

	var out bytes.Buffer
	err := playAuto(context.Background(), svc, service.StartOptions{Rows: 4, Cols: 4}, "perfect", &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "perfect solver finished 4x4 in")
	assert.Contains(t, text, "8 pairs")
	assert.Contains(t, text, "complete")
	assert.NotContains(t, text, "\n     0", "every tile should be face up at the end")

	err = playAuto(context.Background(), svc, service.StartOptions{Rows: 2, Cols: 2}, "psychic", &out)
	assert.Error(t, err)
}

func TestPrintPresets(t *testing.T) {
	presets := []*service.PresetInfo{
		{PresetID: "2x2", Name: "2x2", Description: "Two pairs", Rows: 2, Cols: 2, Pairs: 2},
		{PresetID: "4x4", Name: "4x4", Description: "Classic", Rows: 4, Cols: 4, Pairs: 8, Filename: "4x4.json"},
	}

	var buf bytes.Buffer
	printPresets(&buf, presets, "4x4")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "built-in")
	assert.Contains(t, lines[2], "4x4 *")
	assert.Contains(t, lines[2], "4x4.json")
}

func TestPrintValidation(t *testing.T) {
	var buf bytes.Buffer
	ok := printValidation(&buf, "presets", []validate.Result{
		{File: "a.json", Valid: true, Messages: []string{"✓ Name: a"}},
	})
	assert.True(t, ok)
	assert.Contains(t, buf.String(), "a.json: ✓ VALID")
	assert.Contains(t, buf.String(), "All presets are valid.")

	buf.Reset()
	ok = printValidation(&buf, "presets", []validate.Result{
		{File: "a.json", Valid: true},
		{File: "b.json", Valid: false, Messages: []string{"odd board"}},
	})
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "b.json: ✗ INVALID")
	assert.Contains(t, buf.String(), "  odd board")
	assert.Contains(t, buf.String(), "Some presets are invalid.")
}

func TestBundledPresetsAreValid(t *testing.T) {
	results, err := validate.Dir("presets")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.True(t, r.Valid, "%s: %v", r.File, r.Messages)
	}
}
