package scarb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"starklings/exercise"

	"github.com/rs/zerolog/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Commands holds one shell script per backend operation. Scripts see the
// exercise path as $EXERCISE and the temporary artifact as $OUTPUT.
type Commands struct {
	Build string `yaml:"build"`
	Run   string `yaml:"run"`
	Test  string `yaml:"test"`
}

var DefaultCommands = Commands{
	Build: `cairo-compile "$EXERCISE" "$OUTPUT"`,
	Run:   `cairo-run --single-file "$EXERCISE"`,
	Test:  `cairo-test --single-file "$EXERCISE"`,
}

type CommandError struct {
	Op     string
	Path   string
	Output exercise.ExerciseOutput
	// ExitStatus is -1 when the script did not get to exit on its own.
	ExitStatus int
	Err        error
}

func (e *CommandError) Error() string {
	if e.ExitStatus > 0 {
		return fmt.Sprintf("%s %s: exit status %d", e.Op, e.Path, e.ExitStatus)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *CommandError) Unwrap() []error {
	return []error{exercise.ErrBackendFailure, e.Err}
}

// Backend runs the configured scripts with an embedded POSIX shell. Calls
// are serialized because every operation shares TempFile.
type Backend struct {
	commands Commands
	dir      string

	mu sync.Mutex
}

// NewBackend returns a backend running scripts in dir, or in the current
// directory when dir is empty. Empty scripts fall back to DefaultCommands.
func NewBackend(commands Commands, dir string) *Backend {
	if commands.Build == "" {
		commands.Build = DefaultCommands.Build
	}
	if commands.Run == "" {
		commands.Run = DefaultCommands.Run
	}
	if commands.Test == "" {
		commands.Test = DefaultCommands.Test
	}
	return &Backend{
		commands: commands,
		dir:      dir,
	}
}

func (b *Backend) Build(ctx context.Context, path string) (exercise.ExerciseOutput, error) {
	return b.exec(ctx, "build", b.commands.Build, path)
}

func (b *Backend) Run(ctx context.Context, path string) (exercise.ExerciseOutput, error) {
	return b.exec(ctx, "run", b.commands.Run, path)
}

func (b *Backend) Test(ctx context.Context, path string) (exercise.ExerciseOutput, error) {
	return b.exec(ctx, "test", b.commands.Test, path)
}

func (b *Backend) exec(ctx context.Context, op string, script string, path string) (exercise.ExerciseOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	guard := Acquire()
	defer guard.Release()

	fail := func(output exercise.ExerciseOutput, err error) (exercise.ExerciseOutput, error) {
		cmdErr := &CommandError{Op: op, Path: path, Output: output, ExitStatus: -1, Err: err}
		var status interp.ExitStatus
		if errors.As(err, &status) {
			cmdErr.ExitStatus = int(status)
		}
		log.Debug().Err(err).Str("op", op).Str("path", path).Msg("backend command failed")
		return output, cmdErr
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fail(exercise.ExerciseOutput{}, err)
	}
	file, err := syntax.NewParser().Parse(strings.NewReader(script), op)
	if err != nil {
		return fail(exercise.ExerciseOutput{}, fmt.Errorf("parse %s command: %w", op, err))
	}

	var stdout, stderr bytes.Buffer
	env := append(os.Environ(), "EXERCISE="+absPath, "OUTPUT="+guard.Path())
	opts := []interp.RunnerOption{
		interp.StdIO(nil, &stdout, &stderr),
		interp.Env(expand.ListEnviron(env...)),
	}
	if b.dir != "" {
		opts = append(opts, interp.Dir(b.dir))
	}
	runner, err := interp.New(opts...)
	if err != nil {
		return fail(exercise.ExerciseOutput{}, err)
	}

	err = runner.Run(ctx, file)
	output := exercise.ExerciseOutput{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		return fail(output, err)
	}
	log.Debug().Str("op", op).Str("path", path).Msg("backend command succeeded")
	return output, nil
}
