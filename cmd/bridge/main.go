package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hass-mcp-bridge/internal/adapters/input/mcpserver"
	"hass-mcp-bridge/internal/adapters/output/homeassistant"
	"hass-mcp-bridge/internal/adapters/output/persistence"
	"hass-mcp-bridge/internal/config"
	"hass-mcp-bridge/internal/domain/directory"
	"hass-mcp-bridge/internal/domain/service"
	"hass-mcp-bridge/internal/domain/translator"
)

const version = "1.0.0"

func main() {
	cfg := config.FromEnv()
	setupLogging(cfg.LogLevel)

	log.Info().Str("hub", cfg.BaseURL).Msg("Starting Home Assistant MCP bridge")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Credential acquisition: cache hit or interactive login.
	tokenRepo := persistence.NewFileTokenRepository(cfg.CacheDir)
	authClient := homeassistant.NewAuthClient(cfg.BaseURL, cfg.WebsocketURL(), cfg.Username, cfg.Password)
	credentials := service.NewCredentialService(tokenRepo, authClient, config.TokenClientName)

	token, err := credentials.GetOrCreateToken(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to acquire credential")
	}

	// The hub must expose the tool-calling integration before we connect.
	installer := homeassistant.NewInstaller(cfg.BaseURL)
	if _, err := installer.EnsureCapability(ctx, token); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure tool-calling integration")
	}

	upstreamClient, err := homeassistant.NewMCPClient(cfg.SSEURL(), token, cfg.CallTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build upstream client")
	}
	if err := upstreamClient.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to hub tool-calling endpoint")
	}
	defer upstreamClient.Close()

	// Auth-kind failures during serving purge the cache for the next start.
	upstream := service.NewAuthGuard(upstreamClient, credentials)

	dir := directory.New(upstream)
	bridge := service.NewBridgeService(dir, translator.New(upstream, dir))

	log.Info().Msg("Serving MCP on stdio")
	if err := mcpserver.New(bridge, version).ServeStdio(); err != nil {
		log.Fatal().Err(err).Msg("MCP server failed")
	}
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	// stdout carries the MCP framing; logs must stay on stderr.
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
