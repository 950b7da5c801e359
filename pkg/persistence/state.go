package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/rnetctl/rnet-go/pkg/rnet"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// ErrVersion is returned by Load for a file written by a newer format.
var ErrVersion = errors.New("unsupported state file version")

// SystemState is the cached configuration of one Russound system.
type SystemState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Address is the host:port the tables were read from.
	Address string `json:"address,omitempty"`

	// Protocol is RNET or RIO.
	Protocol string `json:"protocol,omitempty"`

	// Controllers holds one table per controller, ordered by number.
	Controllers []ControllerTable `json:"controllers,omitempty"`
}

// ControllerTable is the JSON form of rnet.ZoneSourceTable.
type ControllerTable struct {
	Controller  int       `json:"controller"`
	ZoneCount   int       `json:"zone_count"`
	SourceCount int       `json:"source_count"`
	ZoneNames   []string  `json:"zone_names,omitempty"`
	SourceNames []string  `json:"source_names,omitempty"`
	CustomNames []string  `json:"custom_names,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// FromTable converts a parsed table.
func FromTable(t *rnet.ZoneSourceTable, fetchedAt time.Time) ControllerTable {
	ct := ControllerTable{
		Controller:  t.Controller,
		ZoneCount:   t.ZoneCount,
		SourceCount: t.SourceCount,
		ZoneNames:   slices.Clone(t.ZoneNames),
		SourceNames: slices.Clone(t.SourceNames),
		FetchedAt:   fetchedAt,
	}
	if slices.ContainsFunc(t.CustomNames[:], func(n string) bool { return n != "" }) {
		ct.CustomNames = slices.Clone(t.CustomNames[:])
	}
	return ct
}

// Table converts back to the parsed form.
func (c ControllerTable) Table() *rnet.ZoneSourceTable {
	t := &rnet.ZoneSourceTable{
		Controller:  c.Controller,
		ZoneCount:   c.ZoneCount,
		SourceCount: c.SourceCount,
		ZoneNames:   slices.Clone(c.ZoneNames),
		SourceNames: slices.Clone(c.SourceNames),
	}
	copy(t.CustomNames[:], c.CustomNames)
	return t
}

// Put stores or replaces the table of a controller.
func (s *SystemState) Put(ct ControllerTable) {
	i, found := slices.BinarySearchFunc(s.Controllers, ct.Controller, func(e ControllerTable, n int) int {
		return e.Controller - n
	})
	if found {
		s.Controllers[i] = ct
		return
	}
	s.Controllers = slices.Insert(s.Controllers, i, ct)
}

// Table returns the cached table of a controller.
func (s *SystemState) Table(controller int) (*rnet.ZoneSourceTable, bool) {
	ct, ok := s.entry(controller)
	if !ok {
		return nil, false
	}
	return ct.Table(), true
}

// Fresh reports whether the controller's table exists and was fetched within
// maxAge of now. A zero maxAge never expires.
func (s *SystemState) Fresh(controller int, maxAge time.Duration, now time.Time) bool {
	ct, ok := s.entry(controller)
	if !ok {
		return false
	}
	return maxAge == 0 || now.Sub(ct.FetchedAt) <= maxAge
}

func (s *SystemState) entry(controller int) (ControllerTable, bool) {
	for _, ct := range s.Controllers {
		if ct.Controller == controller {
			return ct, true
		}
	}
	return ControllerTable{}, false
}

// TableStore manages persistence of system state to a JSON file.
type TableStore struct {
	mu   sync.Mutex
	path string
}

// NewTableStore creates a store backed by path.
func NewTableStore(path string) *TableStore {
	return &TableStore{path: path}
}

// Path returns the file path.
func (s *TableStore) Path() string {
	return s.path
}

// Save persists the state to disk. The file is replaced atomically.
func (s *TableStore) Save(state *SystemState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(state)
}

func (s *TableStore) save(state *SystemState) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads the state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *TableStore) Load() (*SystemState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *TableStore) load() (*SystemState, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &SystemState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	if state.Version > StateVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, state.Version)
	}
	return state, nil
}

// Update loads the state, applies fn and saves the result. A missing file
// starts from an empty state.
func (s *TableStore) Update(fn func(*SystemState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	if state == nil {
		state = &SystemState{}
	}
	fn(state)
	state.SavedAt = time.Now()
	return s.save(state)
}

// Clear removes the state file.
func (s *TableStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
