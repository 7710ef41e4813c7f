// Command memorygame starts the Memory Match Game server.
//
// It supports these commands:
//  1. "serve" (default): runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp": runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play": plays a game in the terminal, by hand or with a solver
//  4. "presets": lists and validates board presets
//
// Settings come from the environment (and an optional .env file); flags
// override them.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/memorygame/game/config"
	"github.com/wricardo/mcp-training/memorygame/logging"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Memory Match Game Server"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("exiting")
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "memorygame",
		Usage:   AppName,
		Version: Version,
		Flags:   append(globalFlags(), serveFlags()...),
		Action:  serveAction,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  serveAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, starting an internal HTTP server if none is running",
				Action:  stdioAction,
			},
			{
				Name:   "play",
				Usage:  "Play a game in the terminal",
				Flags:  playFlags(),
				Action: playAction,
			},
			{
				Name:  "presets",
				Usage: "Inspect board presets",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List available presets",
						Action: presetsListAction,
					},
					{
						Name:      "validate",
						Usage:     "Validate preset files",
						ArgsUsage: "[dir]",
						Action:    presetsValidateAction,
					},
				},
			},
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Printf("%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "host", Usage: "HTTP server host (MEMORYGAME_HOST)"},
		&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP server port (MEMORYGAME_PORT)"},
		&cli.StringFlag{Name: "preset-dir", Aliases: []string{"config-dir"}, Usage: "Directory containing board presets (MEMORYGAME_PRESET_DIR)"},
		&cli.StringFlag{Name: "store", Usage: "Session store: memory, file or sqlite (MEMORYGAME_STORE)"},
		&cli.StringFlag{Name: "sessions-dir", Usage: "Directory for the file store (MEMORYGAME_SESSIONS_DIR)"},
		&cli.StringFlag{Name: "sqlite-path", Usage: "Database file for the sqlite store (MEMORYGAME_SQLITE_PATH)"},
		&cli.IntFlag{Name: "max-sessions", Usage: "Sessions kept in memory, 0 for no cap (MEMORYGAME_MAX_SESSIONS)"},
		&cli.DurationFlag{Name: "session-ttl", Usage: "Idle time before a session expires (MEMORYGAME_SESSION_TTL)"},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (MEMORYGAME_LOG_LEVEL)"},
		&cli.StringFlag{Name: "log-format", Usage: "pretty or json (MEMORYGAME_LOG_FORMAT)"},
		&cli.BoolFlag{Name: "debug", Usage: "Shorthand for --log-level debug"},
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "static-dir", Usage: "Serve browser client files from this directory (MEMORYGAME_STATIC_DIR)"},
		&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel (NGROK_ENABLED)"},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token (NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)"},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (NGROK_DOMAIN)"},
	}
}

// loadSettings reads the environment, applies flag overrides and sets up
// logging. Every command calls it first.
func loadSettings(cmd *cli.Command) (*config.Settings, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, settings)

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := logging.Setup(settings.LogLevel, settings.LogFormat); err != nil {
		return nil, err
	}
	return settings, nil
}

// applyFlags copies explicitly set flags over the environment values
func applyFlags(cmd *cli.Command, s *config.Settings) {
	if cmd.IsSet("host") {
		s.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		s.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("preset-dir") {
		s.PresetDir = cmd.String("preset-dir")
	}
	if cmd.IsSet("store") {
		s.Store = cmd.String("store")
	}
	if cmd.IsSet("sessions-dir") {
		s.SessionsDir = cmd.String("sessions-dir")
	}
	if cmd.IsSet("sqlite-path") {
		s.SQLitePath = cmd.String("sqlite-path")
	}
	if cmd.IsSet("max-sessions") {
		s.MaxSessions = int(cmd.Int("max-sessions"))
	}
	if cmd.IsSet("session-ttl") {
		s.SessionTTL = cmd.Duration("session-ttl")
	}
	if cmd.IsSet("log-level") {
		s.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		s.LogFormat = cmd.String("log-format")
	}
	if cmd.Bool("debug") {
		s.LogLevel = "debug"
	}
	if cmd.IsSet("static-dir") {
		s.StaticDir = cmd.String("static-dir")
	}
	if cmd.Bool("ngrok") {
		s.NgrokEnabled = true
	}
	if cmd.IsSet("ngrok-auth") {
		s.NgrokAuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		s.NgrokDomain = cmd.String("ngrok-domain")
	}
}
