package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"starklings/service"
	"starklings/shared"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
)

const (
	ServerName    = "Starklings Exercise Mcp Server"
	ServerVersion = "v1.0"
)

// Server exposes the exercise tools over MCP.
type Server struct {
	mcpServer *server.MCPServer
}

func NewServer(svc *service.ExerciseService) (*Server, error) {
	s := &Server{
		mcpServer: server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(true)),
	}
	for _, endpoint := range svc.Endpoints() {
		err := s.register(endpoint)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Server) register(endpoint service.ToolEndPoint) error {
	tool, err := shared.ConvertToMcpTool(endpoint.Def)
	if err != nil {
		return fmt.Errorf("convert tool %s: %w", endpoint.Name, err)
	}
	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args json.RawMessage
		err := request.BindArguments(&args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := endpoint.Handler(ctx, string(args))
		if err != nil {
			log.Debug().Err(err).Str("tool", endpoint.Name).Msg("mcp tool call failed")
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(res), nil
	}
	s.mcpServer.AddTool(tool, handler)
	return nil
}

func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Run serves the tools on stdin/stdout until the input is closed.
func (s *Server) Run() error {
	log.Info().Str("server", ServerName).Msg("serving exercise tools on stdio")
	return server.ServeStdio(s.mcpServer)
}
