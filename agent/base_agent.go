package agent

import (
	"context"
	"errors"
	"fmt"

	"starklings/service"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// OutputFunc inspects each assistant message and returns true to stop.
type OutputFunc func(msg openai.ChatCompletionMessage) bool

type BaseAgent struct {
	actionStack  []openai.ChatCompletionMessage
	input        []openai.ChatCompletionMessage
	toolDispatch *service.ToolDispatcher
}

func NewBaseAgent(instruct string, userInput string, tools *service.ToolDispatcher) *BaseAgent {
	input := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: instruct},
		{Role: openai.ChatMessageRoleUser, Content: userInput},
	}
	return &BaseAgent{
		input:        input,
		toolDispatch: tools,
	}
}

func (a *BaseAgent) chat(ctx context.Context, client *openai.Client, model string) (*openai.ChatCompletionChoice, error) {
	msgs := []openai.ChatCompletionMessage{}
	msgs = append(msgs, a.input...)
	msgs = append(msgs, a.actionStack...)
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: msgs,
		Tools:    a.toolDispatch.GetTools(),
	}
	response, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(response.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}
	return &response.Choices[0], nil
}

func (a *BaseAgent) handleToolCall(ctx context.Context, toolCalls []openai.ToolCall) {
	for _, call := range toolCalls {
		res := a.toolDispatch.Run(ctx, call)
		a.actionStack = append(a.actionStack, res)
		log.Debug().
			Str("tool", call.Function.Name).
			Str("args", call.Function.Arguments).
			Str("result", res.Content).
			Msg("tool call")
	}
}

// Run talks to the model until it stops, outputFunc asks to stop, or
// maxRounds requests have been made. maxRounds <= 0 means no bound.
func (a *BaseAgent) Run(ctx context.Context, client *openai.Client, model string, maxRounds int, outputFunc OutputFunc) error {
	a.actionStack = nil
	for round := 0; ; round++ {
		if maxRounds > 0 && round >= maxRounds {
			return fmt.Errorf("agent stopped after %d rounds without an answer", maxRounds)
		}
		resp, err := a.chat(ctx, client, model)
		if err != nil {
			log.Error().Err(err).Msg("chat failed")
			return err
		}
		a.actionStack = append(a.actionStack, resp.Message)
		log.Debug().
			Str("role", resp.Message.Role).
			Str("content", resp.Message.Content).
			Int("tool_calls", len(resp.Message.ToolCalls)).
			Msg("assistant message")

		a.handleToolCall(ctx, resp.Message.ToolCalls)

		if outputFunc != nil {
			finished := outputFunc(resp.Message)
			if finished {
				return nil
			}
		}
		if resp.FinishReason == openai.FinishReasonStop || len(resp.Message.ToolCalls) == 0 {
			return nil
		}
	}
}
