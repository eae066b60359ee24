package mcpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"starklings/service"
	"starklings/shared"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
)

type ClientMgr struct {
	clientMap map[string]*client.Client
}

func NewClientMgr() *ClientMgr {
	return &ClientMgr{
		clientMap: map[string]*client.Client{},
	}
}

func (mgr *ClientMgr) CloseByName(name string) error {
	c, exist := mgr.clientMap[name]
	if !exist {
		return fmt.Errorf("client %s not exist", name)
	}
	err := c.Close()
	if err != nil {
		return err
	}
	delete(mgr.clientMap, name)
	return nil
}

func (mgr *ClientMgr) Close() error {
	var errList []error
	for name, c := range mgr.clientMap {
		err := c.Close()
		if err != nil {
			errList = append(errList, err)
		}
		delete(mgr.clientMap, name)
	}
	return errors.Join(errList...)
}

// NewMCPClient starts command as an MCP server speaking over stdio.
func (mgr *ClientMgr) NewMCPClient(ctx context.Context, command string, env []string, args ...string) error {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return err
	}
	return mgr.initialize(ctx, c)
}

// NewInProcessClient connects to an MCP server living in this process.
func (mgr *ClientMgr) NewInProcessClient(ctx context.Context, s *server.MCPServer) error {
	c, err := client.NewInProcessClient(s)
	if err != nil {
		return err
	}
	err = c.Start(ctx)
	if err != nil {
		c.Close()
		return err
	}
	return mgr.initialize(ctx, c)
}

func (mgr *ClientMgr) initialize(ctx context.Context, c *client.Client) error {
	res, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo: mcp.Implementation{
				Name:    "starklings-tutor",
				Version: "1.0.0",
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	})
	if err != nil {
		c.Close()
		return err
	}
	_, exist := mgr.clientMap[res.ServerInfo.Name]
	if exist {
		c.Close()
		return fmt.Errorf("mcp server %s already exist", res.ServerInfo.Name)
	}
	mgr.clientMap[res.ServerInfo.Name] = c
	log.Debug().Str("server", res.ServerInfo.Name).Msg("mcp client connected")
	return nil
}

func (mgr *ClientMgr) LoadAllTools(ctx context.Context) ([]service.ToolEndPoint, error) {
	var endpoint []service.ToolEndPoint
	var errorList []error
	for _, c := range mgr.clientMap {
		res, err := mgr.loadTools(ctx, c)
		if err != nil {
			errorList = append(errorList, err)
		} else {
			endpoint = append(endpoint, res...)
		}
	}
	err := errors.Join(errorList...)
	if err != nil {
		return nil, err
	}
	return endpoint, nil
}

func (mgr *ClientMgr) loadTools(ctx context.Context, c *client.Client) ([]service.ToolEndPoint, error) {
	res, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, err
	}
	endpointList := []service.ToolEndPoint{}
	for _, tool := range res.Tools {
		endpoint := service.ToolEndPoint{
			Name: tool.Name,
			Def:  shared.ConvertToFunctionDefinition(tool),
			Handler: func(ctx context.Context, args string) (string, error) {
				req := mcp.CallToolRequest{}
				req.Params.Name = tool.Name
				if args != "" {
					req.Params.Arguments = json.RawMessage(args)
				}
				res, err := c.CallTool(ctx, req)
				if err != nil {
					return "", err
				}
				text := contentText(res.Content)
				if res.IsError {
					return "", fmt.Errorf("tool %s: %s", tool.Name, strings.TrimSpace(text))
				}
				return text, nil
			},
		}
		endpointList = append(endpointList, endpoint)
	}
	return endpointList, nil
}

func contentText(contents []mcp.Content) string {
	var builder strings.Builder
	for _, content := range contents {
		switch text := content.(type) {
		case mcp.TextContent:
			builder.WriteString(text.Text)
		case *mcp.TextContent:
			builder.WriteString(text.Text)
		default:
			continue
		}
		if !strings.HasSuffix(builder.String(), "\n") {
			builder.WriteByte('\n')
		}
	}
	return builder.String()
}
