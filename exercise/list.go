package exercise

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type List struct {
	Exercises []*Exercise
}

type exerciseRecord struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
	Mode string `yaml:"mode"`
	Hint string `yaml:"hint"`
}

type listDocument struct {
	Exercises []exerciseRecord `yaml:"exercises"`
}

// LoadList reads an exercise list file. Relative exercise paths are resolved
// against the directory holding the list.
func LoadList(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read exercise list: %w", err)
	}
	list, err := ParseList(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("load exercise list %s: %w", path, err)
	}
	log.Debug().Str("file", path).Int("exercises", len(list.Exercises)).Msg("exercise list loaded")
	return list, nil
}

func ParseList(data []byte, baseDir string) (*List, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var doc listDocument
	err := decoder.Decode(&doc)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	list := &List{Exercises: make([]*Exercise, 0, len(doc.Exercises))}
	seen := map[string]bool{}
	for i, record := range doc.Exercises {
		if record.Name == "" {
			return nil, fmt.Errorf("exercise #%d has no name", i+1)
		}
		if record.Path == "" {
			return nil, fmt.Errorf("exercise %s has no path", record.Name)
		}
		if seen[record.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, record.Name)
		}
		seen[record.Name] = true

		mode, err := ParseMode(record.Mode)
		if err != nil {
			return nil, fmt.Errorf("exercise %s: %w", record.Name, err)
		}
		path := record.Path
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		list.Exercises = append(list.Exercises, New(record.Name, path, mode, record.Hint))
	}
	return list, nil
}

func (l *List) Find(name string) (*Exercise, error) {
	for _, e := range l.Exercises {
		if e.Name == name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// FirstPending walks the list in order and returns the first exercise that
// still carries a marker. It returns nil when every exercise is done.
func (l *List) FirstPending() (*Exercise, State, error) {
	for _, e := range l.Exercises {
		state, err := e.State()
		if err != nil {
			return nil, State{}, err
		}
		if !state.IsDone() {
			return e, state, nil
		}
	}
	return nil, State{}, nil
}

type Progress struct {
	Done       int `json:"done"`
	Total      int `json:"total"`
	Unreadable int `json:"unreadable,omitempty"`
}

// Progress counts done exercises. Unreadable exercises are counted apart and
// never as done.
func (l *List) Progress(ctx context.Context) (Progress, error) {
	results, err := States(ctx, l.Exercises, 0)
	if err != nil {
		return Progress{}, err
	}
	progress := Progress{Total: len(results)}
	for _, res := range results {
		switch {
		case res.Err != nil:
			progress.Unreadable++
		case res.State.IsDone():
			progress.Done++
		}
	}
	return progress, nil
}

// StateResult is the outcome of reading one exercise in a batch. State is
// only meaningful when Err is nil.
type StateResult struct {
	State State
	Err   error
}

// States computes the state of each exercise concurrently, at most limit at
// a time when limit is positive. Each exercise is read by one goroutine only
// and the result keeps the order of exercises. A read failure is recorded on
// that exercise's result and leaves the others untouched; the returned error
// is only set when ctx is done.
func States(ctx context.Context, exercises []*Exercise, limit int) ([]StateResult, error) {
	results := make([]StateResult, len(exercises))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, e := range exercises {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			state, err := e.State()
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].State = state
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
