// Package checkpoint persists per-stage completion state so an
// interrupted batch resumes where it stopped instead of redoing
// finished work.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"aircheck/internal/fileutil"
	"aircheck/internal/logging"
	"aircheck/internal/services"
)

// Stage identifies one phase of a run in the checkpoint record.
type Stage string

const (
	StageGenerate Stage = "generate"
	StageAudit    Stage = "audit"
	StageAudio    Stage = "audio"
)

const schemaVersion = 1

// ItemState records a finished item within a stage.
type ItemState struct {
	Version     int       `json:"version"`
	Outcome     string    `json:"outcome,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// StageState holds the completed items of one stage keyed by item key.
type StageState struct {
	Items map[string]ItemState `json:"items"`
}

// Record is the on-disk checkpoint document.
type Record struct {
	SchemaVersion int                   `json:"schema_version"`
	RunID         string                `json:"run_id,omitempty"`
	Stages        map[Stage]*StageState `json:"stages"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func newRecord() *Record {
	return &Record{
		SchemaVersion: schemaVersion,
		Stages:        map[Stage]*StageState{},
	}
}

// Store owns the checkpoint file. It is written through on every mark
// so a crash at any point loses at most the item in flight. The store
// is not safe for concurrent use; the pipeline is sequential.
type Store struct {
	path   string
	logger *slog.Logger
	record *Record
}

// Open loads the checkpoint at path, starting fresh when the file is
// missing. A file that exists but cannot be parsed is treated as
// absent: losing a checkpoint means redoing work, not corrupting it.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	store := &Store{path: path, logger: logger, record: newRecord()}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrCheckpoint, "checkpoint", "open", "reading checkpoint file", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		logger.Warn("checkpoint file unreadable, starting fresh",
			logging.String("path", path), logging.Error(err))
		return store, nil
	}
	if record.SchemaVersion != schemaVersion {
		logger.Warn("checkpoint schema mismatch, starting fresh",
			logging.Int("found", record.SchemaVersion), logging.Int("expected", schemaVersion))
		return store, nil
	}
	if record.Stages == nil {
		record.Stages = map[Stage]*StageState{}
	}
	store.record = &record
	return store, nil
}

// SetRunID records the identifier of the run that last touched the file.
func (s *Store) SetRunID(id string) {
	s.record.RunID = id
}

func (s *Store) RunID() string {
	return s.record.RunID
}

// IsDone reports whether the item already completed the given stage.
func (s *Store) IsDone(stage Stage, key string) bool {
	state, ok := s.record.Stages[stage]
	if !ok {
		return false
	}
	_, done := state.Items[key]
	return done
}

// ItemState returns the stored state for an item in a stage.
func (s *Store) ItemState(stage Stage, key string) (ItemState, bool) {
	state, ok := s.record.Stages[stage]
	if !ok {
		return ItemState{}, false
	}
	item, ok := state.Items[key]
	return item, ok
}

// MarkItemDone records completion and persists immediately. A failed
// save is retried once; if the retry also fails the error is fatal
// because continuing would silently redo or skip work after a restart.
func (s *Store) MarkItemDone(stage Stage, key string, item ItemState) error {
	if item.CompletedAt.IsZero() {
		item.CompletedAt = time.Now().UTC()
	}
	state, ok := s.record.Stages[stage]
	if !ok {
		state = &StageState{Items: map[string]ItemState{}}
		s.record.Stages[stage] = state
	}
	if state.Items == nil {
		state.Items = map[string]ItemState{}
	}
	state.Items[key] = item
	return s.save()
}

// Reset drops all completion state for one stage and persists.
func (s *Store) Reset(stage Stage) error {
	delete(s.record.Stages, stage)
	return s.save()
}

// ResetAll drops the entire record and persists an empty one.
func (s *Store) ResetAll() error {
	runID := s.record.RunID
	s.record = newRecord()
	s.record.RunID = runID
	return s.save()
}

// DoneCount returns how many items completed the given stage.
func (s *Store) DoneCount(stage Stage) int {
	state, ok := s.record.Stages[stage]
	if !ok {
		return 0
	}
	return len(state.Items)
}

// DoneKeys returns the completed item keys for a stage, sorted.
func (s *Store) DoneKeys(stage Stage) []string {
	state, ok := s.record.Stages[stage]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(state.Items))
	for key := range state.Items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) save() error {
	s.record.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(s.record, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrCheckpoint, "checkpoint", "save", "encoding checkpoint", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err == nil {
		return nil
	} else {
		s.logger.Warn("checkpoint save failed, retrying",
			logging.String("path", s.path), logging.Error(err))
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return services.Wrap(services.ErrCheckpoint, "checkpoint", "save",
			fmt.Sprintf("writing checkpoint to %s", s.path), err)
	}
	return nil
}
