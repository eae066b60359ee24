package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"starklings/exercise"
	"starklings/service"

	"github.com/sashabaranov/go-openai"
)

var tutorInstruct = `
You are a patient **Cairo Tutor**. A learner is working through small Cairo exercises. Each unfinished exercise carries a line '// I AM NOT DONE' that the learner removes once the exercise compiles, runs or passes its tests.

Your job is to help the learner make progress on the 'Current Exercise' WITHOUT writing the full solution for them.
1. **Inspect**: use the available tools to read the exercise source and the latest build/run/test output.
2. **Diagnose**: identify the single most important problem blocking the exercise.
3. **Hint**: explain the problem and point at the relevant line numbers and Cairo concept. Give at most a short snippet, never the whole fixed file.

IMPORTANT: never remove the 'I AM NOT DONE' marker yourself and never claim the exercise is done.
IMPORTANT: keep the final answer short: a few sentences, plus an optional snippet.
`

func tutorInput(e *exercise.Exercise, state exercise.State, verify string, question string) string {
	var builder strings.Builder
	builder.WriteString("### CURRENT EXERCISE\n")
	builder.WriteString(exercise.FormatInfo(e))
	builder.WriteByte('\n')
	builder.WriteString("### STATE\n")
	builder.WriteString(exercise.FormatState(e, state))
	builder.WriteByte('\n')
	builder.WriteString("### LATEST OUTPUT\n")
	builder.WriteString(verify)
	builder.WriteByte('\n')
	if question != "" {
		builder.WriteString(fmt.Sprintf("### LEARNER QUESTION\n%s\n", question))
	}
	return builder.String()
}

// TutorAgent asks the model for a hint on e and returns its final answer.
func (w *Workflow) TutorAgent(ctx context.Context, e *exercise.Exercise, question string) (string, error) {
	state, err := e.State()
	if err != nil {
		return "", err
	}
	output, err := w.svc.Verify(ctx, e)
	verify, err := service.FormatVerify(e, output, err)
	if err != nil {
		return "", err
	}

	tools, err := w.tools(ctx)
	if err != nil {
		return "", err
	}
	agent := NewBaseAgent(tutorInstruct, tutorInput(e, state, verify, question), tools)

	var finalMsg string
	outputFunc := func(msg openai.ChatCompletionMessage) bool {
		if len(msg.ToolCalls) == 0 {
			finalMsg = msg.Content
			return true
		}
		return false
	}

	err = agent.Run(ctx, w.client, w.model, w.maxRounds, outputFunc)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(finalMsg) == "" {
		return "", errors.New("tutor returned an empty answer")
	}
	return finalMsg, nil
}
