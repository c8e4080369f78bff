package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// State is everything the store persists
type State struct {
	Histories Histories
	Defaults  map[string]string
}

// Persister loads and saves the whole store state at once
type Persister interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}

// JSONFiles persists histories and default characters as two JSON documents
type JSONFiles struct {
	HistoryPath  string
	DefaultsPath string
}

// NewJSONFiles creates a JSON file persister
func NewJSONFiles(historyPath, defaultsPath string) *JSONFiles {
	return &JSONFiles{HistoryPath: historyPath, DefaultsPath: defaultsPath}
}

// Load reads both files, creating them as empty objects when absent
func (p *JSONFiles) Load(ctx context.Context) (State, error) {
	state := State{}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		return readJSON(p.HistoryPath, &state.Histories)
	})
	g.Go(func() error {
		return readJSON(p.DefaultsPath, &state.Defaults)
	})
	if err := g.Wait(); err != nil {
		return State{}, err
	}
	return state, nil
}

// Save overwrites both files
func (p *JSONFiles) Save(ctx context.Context, state State) error {
	histories := state.Histories
	if histories == nil {
		histories = Histories{}
	}
	defaults := state.Defaults
	if defaults == nil {
		defaults = map[string]string{}
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writeJSON(p.HistoryPath, histories)
	})
	g.Go(func() error {
		return writeJSON(p.DefaultsPath, defaults)
	})
	return g.Wait()
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		data = []byte("{}")
	} else if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// writeJSON replaces path through a temp file in the same directory
func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
