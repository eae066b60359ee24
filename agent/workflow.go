package agent

import (
	"context"
	"fmt"

	"starklings/config"
	mcpclient "starklings/mcp-client"
	"starklings/service"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

type Workflow struct {
	mcpclient *mcpclient.ClientMgr
	client    *openai.Client
	svc       *service.ExerciseService

	model     string
	maxRounds int
}

func NewWorkflow(cfg config.TutorConfig, svc *service.ExerciseService) (*Workflow, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("api key %s not set", cfg.APIKeyEnv)
	}
	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	log.Debug().Str("base_url", clientConfig.BaseURL).Str("model", cfg.Model).Msg("create openai client success")

	return &Workflow{
		mcpclient: mcpclient.NewClientMgr(),
		client:    openai.NewClientWithConfig(clientConfig),
		svc:       svc,
		model:     cfg.Model,
		maxRounds: cfg.MaxRounds,
	}, nil
}

// ConnectMCP starts an extra MCP server whose tools the tutor may call.
func (w *Workflow) ConnectMCP(ctx context.Context, command string, args ...string) error {
	err := w.mcpclient.NewMCPClient(ctx, command, nil, args...)
	if err != nil {
		return fmt.Errorf("connect mcp server %s: %w", command, err)
	}
	log.Info().Str("server", command).Msg("create mcp client success")
	return nil
}

func (w *Workflow) Close() error {
	return w.mcpclient.Close()
}

func (w *Workflow) tools(ctx context.Context) (*service.ToolDispatcher, error) {
	tools := service.NewToolDispatcher()
	err := tools.RegisterToolEndpoint(w.svc.ReadOnlyEndpoints()...)
	if err != nil {
		return nil, err
	}
	mcpTools, err := w.mcpclient.LoadAllTools(ctx)
	if err != nil {
		return nil, err
	}
	err = tools.RegisterToolEndpoint(mcpTools...)
	if err != nil {
		return nil, err
	}
	tools.DebugTools()
	return tools, nil
}
