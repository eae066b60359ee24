package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"starklings/exercise"
	"starklings/shared"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// stateWorkers bounds how many exercise files list_exercises reads at once.
const stateWorkers = 4

type ExerciseService struct {
	list    *exercise.List
	backend exercise.Backend
}

func NewExerciseService(list *exercise.List, backend exercise.Backend) *ExerciseService {
	return &ExerciseService{
		list:    list,
		backend: backend,
	}
}

func (s *ExerciseService) List() *exercise.List {
	return s.list
}

// Verify runs the backend operation matching the exercise mode.
func (s *ExerciseService) Verify(ctx context.Context, e *exercise.Exercise) (exercise.ExerciseOutput, error) {
	switch e.Mode {
	case exercise.ModeBuild:
		return e.Build(ctx, s.backend)
	case exercise.ModeRun:
		return e.Run(ctx, s.backend)
	case exercise.ModeTest:
		return e.Test(ctx, s.backend)
	}
	return exercise.ExerciseOutput{}, fmt.Errorf("%w: %s", exercise.ErrInvalidMode, e.Mode)
}

// FormatVerify renders a Verify result. Backend failures are reported as
// text so they can be shown to the learner; other errors are returned.
func FormatVerify(e *exercise.Exercise, output exercise.ExerciseOutput, err error) (string, error) {
	if err != nil && !errors.Is(err, exercise.ErrBackendFailure) {
		return "", err
	}
	var builder strings.Builder
	if err != nil {
		builder.WriteString(fmt.Sprintf("Exercise '%s' failed to %s: %s\n", e.Name, e.Mode, err))
	} else {
		builder.WriteString(fmt.Sprintf("Exercise '%s' %s succeeded\n", e.Name, e.Mode))
	}
	if output.Stdout != "" {
		builder.WriteString("** stdout **\n")
		builder.WriteString(output.Stdout)
		if !strings.HasSuffix(output.Stdout, "\n") {
			builder.WriteByte('\n')
		}
	}
	if output.Stderr != "" {
		builder.WriteString("** stderr **\n")
		builder.WriteString(output.Stderr)
		if !strings.HasSuffix(output.Stderr, "\n") {
			builder.WriteByte('\n')
		}
	}
	return builder.String(), nil
}

// Overview lists every exercise with its state followed by the progress. An
// exercise that cannot be read is listed as unreadable.
func (s *ExerciseService) Overview(ctx context.Context) (string, error) {
	results, err := exercise.States(ctx, s.list.Exercises, stateWorkers)
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	done, unreadable := 0, 0
	for i, e := range s.list.Exercises {
		res := results[i]
		status := res.State.Status.String()
		switch {
		case res.Err != nil:
			unreadable++
			status = "unreadable: " + res.Err.Error()
		case res.State.IsDone():
			done++
		}
		builder.WriteString(fmt.Sprintf("%s [%s] %s %s\n", e.Name, status, e.Mode, e.Path))
	}
	builder.WriteString(fmt.Sprintf("Progress: %d/%d", done, len(s.list.Exercises)))
	if unreadable > 0 {
		builder.WriteString(fmt.Sprintf(" (%d unreadable)", unreadable))
	}
	builder.WriteByte('\n')
	return builder.String(), nil
}

// Endpoints returns every exercise tool, including mark_done.
func (s *ExerciseService) Endpoints() []ToolEndPoint {
	return append(s.ReadOnlyEndpoints(), s.MarkDoneTool())
}

// ReadOnlyEndpoints returns the tools that leave exercise files untouched.
func (s *ExerciseService) ReadOnlyEndpoints() []ToolEndPoint {
	return []ToolEndPoint{
		s.ListTool(),
		s.InfoTool(),
		s.StateTool(),
		s.ViewTool(),
		s.VerifyTool(),
	}
}

func nameParameters(description string) jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"Name": {
				Type:        jsonschema.String,
				Description: description,
			},
		},
		Required: []string{"Name"},
	}
}

func (s *ExerciseService) findExercise(args string) (*exercise.Exercise, error) {
	var para shared.ExerciseArgs
	err := json.Unmarshal([]byte(args), &para)
	if err != nil {
		return nil, err
	}
	return s.list.Find(para.Name)
}

func (s *ExerciseService) ListTool() ToolEndPoint {
	def := openai.FunctionDefinition{
		Name:        "list_exercises",
		Description: "Lists every exercise in order with its mode and whether it is done or pending, followed by the overall progress.",
		Parameters: jsonschema.Definition{
			Type:       jsonschema.Object,
			Properties: map[string]jsonschema.Definition{},
		},
	}
	handler := func(ctx context.Context, args string) (string, error) {
		return s.Overview(ctx)
	}
	return ToolEndPoint{
		Name:    def.Name,
		Def:     def,
		Handler: handler,
	}
}

func (s *ExerciseService) InfoTool() ToolEndPoint {
	def := openai.FunctionDefinition{
		Name:        "exercise_info",
		Description: "Shows the name, path, mode and hint of an exercise.",
		Parameters:  nameParameters("The exercise name, as listed by list_exercises."),
	}
	handler := func(ctx context.Context, args string) (string, error) {
		e, err := s.findExercise(args)
		if err != nil {
			return "", err
		}
		return exercise.FormatInfo(e), nil
	}
	return ToolEndPoint{
		Name:    def.Name,
		Def:     def,
		Handler: handler,
	}
}

func (s *ExerciseService) StateTool() ToolEndPoint {
	def := openai.FunctionDefinition{
		Name:        "exercise_state",
		Description: "Reports whether an exercise is done. For a pending exercise it shows the lines around the 'I AM NOT DONE' marker, the marker line flagged with '*'.",
		Parameters:  nameParameters("The exercise name, as listed by list_exercises."),
	}
	handler := func(ctx context.Context, args string) (string, error) {
		e, err := s.findExercise(args)
		if err != nil {
			return "", err
		}
		state, err := e.State()
		if err != nil {
			return "", err
		}
		return exercise.FormatState(e, state), nil
	}
	return ToolEndPoint{
		Name:    def.Name,
		Def:     def,
		Handler: handler,
	}
}

func (s *ExerciseService) ViewTool() ToolEndPoint {
	def := openai.FunctionDefinition{
		Name:        "view_exercise",
		Description: "Reads line ranges from an exercise source file, each line prefixed with its number. Omit Lines to read the whole file.",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"Name": {
					Type:        jsonschema.String,
					Description: "The exercise name, as listed by list_exercises.",
				},
				"Lines": {
					Type:        jsonschema.Array,
					Description: "A list of line ranges to retrieve. Each range is a pair of integers [start_line, end_line].",
					Items: &jsonschema.Definition{
						Type:        jsonschema.Array,
						Description: "A specific range defined as [start, end]. Line numbers are 1-indexed.",
						Items: &jsonschema.Definition{
							Type: jsonschema.Integer,
						},
					},
				},
			},
			Required: []string{"Name"},
		},
	}
	handler := func(ctx context.Context, args string) (string, error) {
		var para shared.ViewExerciseArgs
		err := json.Unmarshal([]byte(args), &para)
		if err != nil {
			return "", err
		}
		e, err := s.list.Find(para.Name)
		if err != nil {
			return "", err
		}
		source, err := e.Source()
		if err != nil {
			return "", err
		}
		return ViewLines(exercise.SplitLines(source), para.Lines), nil
	}
	return ToolEndPoint{
		Name:    def.Name,
		Def:     def,
		Handler: handler,
	}
}

func (s *ExerciseService) VerifyTool() ToolEndPoint {
	def := openai.FunctionDefinition{
		Name:        "verify_exercise",
		Description: "Builds, runs or tests an exercise according to its mode and returns the captured stdout and stderr. Compiler and test failures are part of the result.",
		Parameters:  nameParameters("The exercise name, as listed by list_exercises."),
	}
	handler := func(ctx context.Context, args string) (string, error) {
		e, err := s.findExercise(args)
		if err != nil {
			return "", err
		}
		output, err := s.Verify(ctx, e)
		return FormatVerify(e, output, err)
	}
	return ToolEndPoint{
		Name:    def.Name,
		Def:     def,
		Handler: handler,
	}
}

func (s *ExerciseService) MarkDoneTool() ToolEndPoint {
	def := openai.FunctionDefinition{
		Name:        "mark_done",
		Description: "Removes every 'I AM NOT DONE' marker from an exercise source file so the exercise counts as done.",
		Parameters:  nameParameters("The exercise name, as listed by list_exercises."),
	}
	handler := func(ctx context.Context, args string) (string, error) {
		e, err := s.findExercise(args)
		if err != nil {
			return "", err
		}
		err = e.MarkDone()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Exercise '%s' marked as done\n", e.Name), nil
	}
	return ToolEndPoint{
		Name:    def.Name,
		Def:     def,
		Handler: handler,
	}
}
