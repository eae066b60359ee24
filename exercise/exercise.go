package exercise

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

type Mode int

const (
	ModeBuild Mode = iota
	ModeRun
	ModeTest
)

var modeNames = map[Mode]string{
	ModeBuild: "build",
	ModeRun:   "run",
	ModeTest:  "test",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode matches token case-insensitively against build, run and test.
func ParseMode(token string) (Mode, error) {
	for mode, name := range modeNames {
		if strings.EqualFold(strings.TrimSpace(token), name) {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, token)
}

func (m Mode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

type Status int

const (
	StatusDone Status = iota
	StatusPending
)

func (s Status) String() string {
	if s == StatusDone {
		return "done"
	}
	return "pending"
}

// State is derived from the exercise source on every call and never stored.
// The zero value is Done.
type State struct {
	Status  Status
	Context []ContextLine
}

func (s State) IsDone() bool {
	return s.Status == StatusDone
}

func (s State) Equal(other State) bool {
	return s.Status == other.Status && slices.Equal(s.Context, other.Context)
}

type ExerciseOutput struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// Backend builds, runs and tests a single exercise file.
type Backend interface {
	Build(ctx context.Context, path string) (ExerciseOutput, error)
	Run(ctx context.Context, path string) (ExerciseOutput, error)
	Test(ctx context.Context, path string) (ExerciseOutput, error)
}

type Exercise struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Mode Mode   `json:"mode"`
	Hint string `json:"hint"`
}

func New(name string, path string, mode Mode, hint string) *Exercise {
	return &Exercise{
		Name: name,
		Path: path,
		Mode: mode,
		Hint: hint,
	}
}

func (e *Exercise) String() string {
	return e.Path
}

// The entity does not check Mode; picking the operation is up to the caller.

func (e *Exercise) Build(ctx context.Context, backend Backend) (ExerciseOutput, error) {
	return backend.Build(ctx, e.Path)
}

func (e *Exercise) Run(ctx context.Context, backend Backend) (ExerciseOutput, error) {
	return backend.Run(ctx, e.Path)
}

func (e *Exercise) Test(ctx context.Context, backend Backend) (ExerciseOutput, error) {
	return backend.Test(ctx, e.Path)
}

// Source reads the exercise file. Missing, unreadable and non UTF-8 files
// all fail with ErrFileUnreadable.
func (e *Exercise) Source() (string, error) {
	data, err := os.ReadFile(e.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileUnreadable, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrFileUnreadable, e.Path)
	}
	return string(data), nil
}

// State reads the exercise source and reports Done when no marker line is
// present, otherwise Pending with the lines around the first marker.
func (e *Exercise) State() (State, error) {
	source, err := e.Source()
	if err != nil {
		return State{}, err
	}
	lines := SplitLines(source)
	pivot, found := FindMarker(lines)
	if !found {
		return State{Status: StatusDone}, nil
	}
	return State{
		Status:  StatusPending,
		Context: extractContext(lines, pivot),
	}, nil
}

func (e *Exercise) LooksDone() (bool, error) {
	state, err := e.State()
	if err != nil {
		return false, err
	}
	return state.Equal(State{Status: StatusDone}), nil
}

// MarkDone removes every marker from the exercise source and writes it back.
func (e *Exercise) MarkDone() error {
	source, err := e.Source()
	if err != nil {
		return err
	}
	updated, removed := RemoveMarkers(source)
	if removed == 0 {
		return nil
	}
	info, err := os.Stat(e.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileUnwritable, err)
	}
	err = os.WriteFile(e.Path, []byte(updated), info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileUnwritable, err)
	}
	log.Debug().Str("exercise", e.Name).Int("markers", removed).Msg("marked exercise done")
	return nil
}
