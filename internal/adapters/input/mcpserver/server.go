package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"hass-mcp-bridge/internal/ports"
)

// Server registers the public operations with the downstream MCP runtime
// and dispatches them to the bridge. Call failures come back as tool
// results; nothing here terminates the process.
type Server struct {
	bridge    ports.BridgePort
	mcpServer *server.MCPServer
}

func New(bridge ports.BridgePort, version string) *Server {
	s := &Server{bridge: bridge}

	s.mcpServer = server.NewMCPServer(
		"home-assistant-bridge",
		version,
		server.WithToolCapabilities(true),
	)
	s.mcpServer.AddTool(getDeviceInfoTool(), s.handleGetDeviceInfo)
	s.mcpServer.AddTool(switchControlTool(), s.handleSwitchControl)
	s.mcpServer.AddTool(lightSetTool(), s.handleLightSet)

	return s
}

// ServeStdio blocks serving the message-framed stdio channel.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) handleGetDeviceInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Info().Msg("get_device_info invoked")

	infos, err := s.bridge.GetDeviceInfo(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Device info failed")
		return mcp.NewToolResultError(fmt.Sprintf("An error occurred while getting device info: %v", err)), nil
	}
	return jsonResult(infos)
}

func (s *Server) handleSwitchControl(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := request.GetStringSlice("id", nil)
	if len(ids) == 0 {
		return mcp.NewToolResultError("Error: id parameter is required"), nil
	}
	on, err := request.RequireBool("on")
	if err != nil {
		return mcp.NewToolResultError("Error: on parameter is required"), nil
	}

	log.Info().Int("count", len(ids)).Bool("on", on).Msg("switch_control invoked")
	return jsonResult(s.bridge.SwitchControl(ctx, ids, on))
}

func (s *Server) handleLightSet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := request.GetStringSlice("id", nil)
	if len(ids) == 0 {
		return mcp.NewToolResultError("Error: id parameter is required"), nil
	}

	var brightness *int
	if _, present := request.GetArguments()["brightness"]; present {
		b := request.GetInt("brightness", 0)
		brightness = &b
	}

	log.Info().Int("count", len(ids)).Interface("brightness", brightness).Msg("light_set invoked")
	return jsonResult(s.bridge.LightSet(ctx, ids, brightness))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}
