// Package storage provides trial stores satisfying the core.Storage
// contract: an in-memory store for tests and single-process studies,
// and a SQLite-backed store for persistent or multi-process studies.
package storage

import (
	"sync"

	"github.com/jpfeil/hubsampler/pkg/core"
	"github.com/jpfeil/hubsampler/pkg/errors"
)

type trialRecord struct {
	id      int
	number  int
	studyID string
	state   core.TrialState
	params  map[string]interface{}
	dists   core.SearchSpace
	attrs   map[string]interface{}
	values  []float64
}

// MemoryStorage is a mutex-guarded in-memory trial store. Each call is
// atomic; snapshots returned to callers are frozen copies.
type MemoryStorage struct {
	mu     sync.RWMutex
	nextID int
	order  []*trialRecord
	byID   map[int]*trialRecord
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		byID: make(map[int]*trialRecord),
	}
}

func (s *MemoryStorage) CreateTrial(studyID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	number := 0
	for _, r := range s.order {
		if r.studyID == studyID {
			number++
		}
	}
	rec := &trialRecord{
		id:      s.nextID,
		number:  number,
		studyID: studyID,
		state:   core.TrialStateRunning,
		params:  make(map[string]interface{}),
		dists:   make(core.SearchSpace),
		attrs:   make(map[string]interface{}),
	}
	s.order = append(s.order, rec)
	s.byID[rec.id] = rec
	return rec.id, nil
}

func (s *MemoryStorage) GetTrial(trialID int) (*core.Trial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[trialID]
	if !ok {
		return nil, errors.Newf(errors.TrialNotFound, "no trial with id %d", trialID)
	}
	return freeze(rec), nil
}

func (s *MemoryStorage) GetTrials(studyID string, states ...core.TrialState) ([]*core.Trial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var trials []*core.Trial
	for _, rec := range s.order {
		if rec.studyID != studyID {
			continue
		}
		if len(states) > 0 && !stateIn(rec.state, states) {
			continue
		}
		trials = append(trials, freeze(rec))
	}
	return trials, nil
}

func (s *MemoryStorage) SetTrialParam(trialID int, name string, value interface{}, dist core.Distribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[trialID]
	if !ok {
		return errors.Newf(errors.TrialNotFound, "no trial with id %d", trialID)
	}
	if rec.state.Finished() {
		return errors.Newf(errors.InvalidTrialState, "trial %d is already finished", trialID)
	}
	rec.params[name] = value
	rec.dists[name] = dist
	return nil
}

func (s *MemoryStorage) SetTrialSystemAttr(trialID int, key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[trialID]
	if !ok {
		return errors.Newf(errors.TrialNotFound, "no trial with id %d", trialID)
	}
	rec.attrs[key] = value
	return nil
}

func (s *MemoryStorage) TellTrial(trialID int, state core.TrialState, values []float64) error {
	if !state.Finished() {
		return errors.New(errors.InvalidTrialState, "TellTrial requires a terminal state")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[trialID]
	if !ok {
		return errors.Newf(errors.TrialNotFound, "no trial with id %d", trialID)
	}
	if rec.state.Finished() {
		return errors.Newf(errors.InvalidTrialState, "trial %d is already finished", trialID)
	}
	rec.state = state
	rec.values = append([]float64(nil), values...)
	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}

func stateIn(state core.TrialState, states []core.TrialState) bool {
	for _, want := range states {
		if state == want {
			return true
		}
	}
	return false
}

// freeze copies a record into an immutable snapshot. Caller must hold
// at least a read lock.
func freeze(rec *trialRecord) *core.Trial {
	t := &core.Trial{
		ID:            rec.id,
		Number:        rec.number,
		State:         rec.state,
		Params:        make(map[string]interface{}, len(rec.params)),
		Distributions: make(core.SearchSpace, len(rec.dists)),
		SystemAttrs:   make(map[string]interface{}, len(rec.attrs)),
		Values:        append([]float64(nil), rec.values...),
	}
	for k, v := range rec.params {
		t.Params[k] = v
	}
	for k, v := range rec.dists {
		t.Distributions[k] = v
	}
	for k, v := range rec.attrs {
		t.SystemAttrs[k] = v
	}
	return t
}
