// Package store persists the shop's working set (orders, tasks and
// proficiency scores) between runs. Persistence lives outside the
// scheduling engine: the engine only ever sees in-memory snapshots.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/igorsilvi73/SMART-REPAIR/internal/schedule"
)

// ErrStateNotFound is returned when no persisted state exists yet.
var ErrStateNotFound = errors.New("store: state not found")

// State is the on-disk snapshot of everything the shop tracks.
type State struct {
	Orders    []schedule.Order              `json:"orders"`
	Tasks     []schedule.Task               `json:"tasks"`
	Scores    map[string]map[string]float64 `json:"scores,omitempty"`
	UpdatedAt time.Time                     `json:"updated_at"`
}

// StateStore persists shop state snapshots.
type StateStore interface {
	Load() (State, error)
	Save(State) error
}

// Repository stores state as JSON inside the project state directory.
type Repository struct {
	path string
}

// NewRepository creates a repository rooted at the given state directory.
func NewRepository(stateDir string) *Repository {
	return &Repository{path: filepath.Join(stateDir, "state.json")}
}

// Path returns the backing file.
func (r *Repository) Path() string {
	return r.path
}

// Load reads the persisted state if present.
func (r *Repository) Load() (State, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return State{}, ErrStateNotFound
		}
		return State{}, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, err
	}
	return state, nil
}

// Save writes the state to disk. The write goes through a temp file and
// rename so readers never observe a torn snapshot.
func (r *Repository) Save(state State) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, append(encoded, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}
