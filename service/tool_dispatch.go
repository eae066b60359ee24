package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

type ToolHandler func(ctx context.Context, args string) (string, error)

type ToolEndPoint struct {
	Name    string
	Def     openai.FunctionDefinition
	Handler ToolHandler
}

type ToolExecLog struct {
	ID           int
	ToolCallName string
	ToolCallArgs string
	ToolCallRes  string
	ToolCallErr  error
}

func (toolLog *ToolExecLog) formatString() string {
	var builder strings.Builder
	builder.WriteString("** Metadata **\n")
	builder.WriteString(fmt.Sprintf("TOOL_LOG_ID: %d\n", toolLog.ID))
	builder.WriteString("** Status **\n")
	if toolLog.ToolCallErr != nil {
		builder.WriteString(fmt.Sprintf("Execute tool call failed, error: %s\n", toolLog.ToolCallErr))
	} else {
		builder.WriteString("Execute tool call success\n")
		builder.WriteString("** Result **\n")
		builder.WriteString(toolLog.ToolCallRes)
	}
	return builder.String()
}

type ToolDispatcher struct {
	toolMap map[string]ToolEndPoint
	toolLog []*ToolExecLog
}

func NewToolDispatcher() *ToolDispatcher {
	return &ToolDispatcher{
		toolMap: map[string]ToolEndPoint{},
	}
}

func (td *ToolDispatcher) ResetLog() {
	td.toolLog = nil
}

func (td *ToolDispatcher) GetToolLog() []*ToolExecLog {
	return td.toolLog
}

func (td *ToolDispatcher) RegisterToolEndpoint(endpoints ...ToolEndPoint) error {
	err := []error{}
	for _, endpoint := range endpoints {
		_, exist := td.toolMap[endpoint.Name]
		if exist {
			err = append(err, fmt.Errorf("tool with name %s already exist", endpoint.Name))
		} else {
			td.toolMap[endpoint.Name] = endpoint
		}
	}
	return errors.Join(err...)
}

func (td *ToolDispatcher) Run(ctx context.Context, toolCall openai.ToolCall) openai.ChatCompletionMessage {
	endpoint, exist := td.toolMap[toolCall.Function.Name]
	res := openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		ToolCallID: toolCall.ID,
	}
	content := ""
	var err error
	if exist {
		content, err = endpoint.Handler(ctx, toolCall.Function.Arguments)
	} else {
		err = fmt.Errorf("Run tool call failed, Can not find tool with name %s", toolCall.Function.Name)
	}
	if err != nil {
		log.Debug().Err(err).Str("tool", toolCall.Function.Name).Msg("tool call failed")
	}
	toolLog := ToolExecLog{
		ID:           len(td.toolLog),
		ToolCallName: toolCall.Function.Name,
		ToolCallArgs: toolCall.Function.Arguments,
		ToolCallRes:  content,
		ToolCallErr:  err,
	}
	td.toolLog = append(td.toolLog, &toolLog)
	res.Content = toolLog.formatString()
	return res
}

// GetTools returns the registered tools sorted by name so requests are
// stable between calls.
func (td *ToolDispatcher) GetTools() []openai.Tool {
	names := make([]string, 0, len(td.toolMap))
	for name := range td.toolMap {
		names = append(names, name)
	}
	sort.Strings(names)

	res := make([]openai.Tool, 0, len(td.toolMap))
	for _, name := range names {
		endpoint := td.toolMap[name]
		res = append(res, openai.Tool{
			Type:     openai.ToolTypeFunction,
			Function: &endpoint.Def,
		})
	}
	return res
}

// DebugTools logs the definition of every registered tool at debug level.
func (td *ToolDispatcher) DebugTools() {
	for _, tool := range td.toolMap {
		data, _ := json.Marshal(tool.Def)
		log.Debug().Str("tool", tool.Name).RawJSON("def", data).Msg("registered tool")
	}
}
