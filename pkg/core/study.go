package core

import (
	"context"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/jpfeil/hubsampler/pkg/errors"
	"github.com/jpfeil/hubsampler/pkg/logging"
	"github.com/jpfeil/hubsampler/pkg/utils"
)

// Direction states whether an objective is minimized or maximized.
type Direction int

const (
	DirectionMinimize Direction = iota
	DirectionMaximize
)

// Study binds a trial storage, a sampler, and objective directions.
// It owns the suggestion loop; samplers are host-controlled extensions
// invoked from Ask.
type Study struct {
	id         string
	directions []Direction
	storage    Storage
	sampler    Sampler

	// askMu serializes parameter-suggestion calls. Sampler random
	// states are not safe for concurrent use within one process;
	// cross-process determinism relies on seeds, not locks.
	askMu sync.Mutex

	cacheMu        sync.Mutex
	completedCache []*Trial
	cacheValid     bool
}

// StudyOption configures a Study at construction.
type StudyOption func(*Study)

// WithSampler attaches the sampler driving relative and independent
// parameter suggestions.
func WithSampler(s Sampler) StudyOption {
	return func(st *Study) {
		st.sampler = s
	}
}

// WithDirections sets the objective directions. One direction per
// objective value; defaults to a single minimized objective.
func WithDirections(directions ...Direction) StudyOption {
	return func(st *Study) {
		st.directions = directions
	}
}

// WithStudyID overrides the generated study identifier.
func WithStudyID(id string) StudyOption {
	return func(st *Study) {
		st.id = id
	}
}

// NewStudy creates a study over the given storage.
func NewStudy(storage Storage, opts ...StudyOption) *Study {
	s := &Study{
		id:         uuid.NewString(),
		directions: []Direction{DirectionMinimize},
		storage:    storage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Study) ID() string {
	return s.id
}

func (s *Study) Directions() []Direction {
	return s.directions
}

func (s *Study) Storage() Storage {
	return s.storage
}

func (s *Study) Sampler() Sampler {
	return s.sampler
}

// CompletedTrials returns a snapshot of the study's completed trials.
// The snapshot is cached between Tells on this study handle; completed
// trials are immutable so a cached copy never goes stale, it can only
// miss trials completed through another handle. Callers must not
// mutate the returned trials.
func (s *Study) CompletedTrials() ([]*Trial, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if s.cacheValid {
		return s.completedCache, nil
	}

	trials, err := s.storage.GetTrials(s.id, TrialStateComplete)
	if err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to fetch completed trials")
	}
	s.completedCache = trials
	s.cacheValid = true
	return trials, nil
}

func (s *Study) invalidateCache() {
	s.cacheMu.Lock()
	s.cacheValid = false
	s.cacheMu.Unlock()
}

// Ask creates a new trial and samples every parameter in the given
// search space: jointly through the sampler's relative proposal where
// it covers a parameter, independently otherwise.
func (s *Study) Ask(space SearchSpace) (*Trial, error) {
	if s.sampler == nil {
		return nil, errors.New(errors.InvalidConfiguration, "study has no sampler attached")
	}

	s.askMu.Lock()
	defer s.askMu.Unlock()

	trialID, err := s.storage.CreateTrial(s.id)
	if err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to create trial")
	}
	trial, err := s.storage.GetTrial(trialID)
	if err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to fetch new trial")
	}

	relSpace := s.sampler.InferRelativeSearchSpace(s, trial)
	relative, err := s.sampler.SampleRelative(s, trial, relSpace)
	if err != nil {
		return nil, err
	}

	for _, name := range utils.SortedKeys(space) {
		dist := space[name]
		value, ok := relative[name]
		if !ok {
			value, err = s.sampler.SampleIndependent(s, trial, name, dist)
			if err != nil {
				return nil, err
			}
		}
		if err := s.storage.SetTrialParam(trialID, name, value, dist); err != nil {
			return nil, errors.Wrap(err, errors.StorageFailed, "failed to record parameter")
		}
	}

	return s.storage.GetTrial(trialID)
}

// Tell completes a trial with its objective values.
func (s *Study) Tell(trialID int, values ...float64) error {
	if len(values) != len(s.directions) {
		return errors.Newf(errors.InvalidInput,
			"expected %d objective value(s), got %d", len(s.directions), len(values))
	}
	if err := s.storage.TellTrial(trialID, TrialStateComplete, values); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to complete trial")
	}
	s.invalidateCache()
	return nil
}

// TellState moves a trial to an arbitrary terminal state. Failed and
// pruned trials carry no objective values.
func (s *Study) TellState(trialID int, state TrialState, values ...float64) error {
	if !state.Finished() {
		return errors.New(errors.InvalidTrialState, "TellState requires a terminal state")
	}
	if err := s.storage.TellTrial(trialID, state, values); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to finish trial")
	}
	s.invalidateCache()
	return nil
}

// AddTrial injects an already-evaluated trial into the study. Used to
// seed a study with pre-existing results before optimization starts.
func (s *Study) AddTrial(params map[string]interface{}, dists SearchSpace, values ...float64) (*Trial, error) {
	trialID, err := s.storage.CreateTrial(s.id)
	if err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to create trial")
	}
	for _, name := range utils.SortedKeys(params) {
		dist, ok := dists[name]
		if !ok {
			return nil, errors.Newf(errors.InvalidInput, "no distribution for parameter %q", name)
		}
		if err := s.storage.SetTrialParam(trialID, name, params[name], dist); err != nil {
			return nil, errors.Wrap(err, errors.StorageFailed, "failed to record parameter")
		}
	}
	if err := s.storage.TellTrial(trialID, TrialStateComplete, values); err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to complete trial")
	}
	s.invalidateCache()
	return s.storage.GetTrial(trialID)
}

// BestTrial returns the completed trial with the best first-objective
// value under the study's direction. Only meaningful for
// single-objective studies; multi-objective callers should rank the
// Pareto front themselves.
func (s *Study) BestTrial() (*Trial, error) {
	trials, err := s.CompletedTrials()
	if err != nil {
		return nil, err
	}
	if len(trials) == 0 {
		return nil, errors.New(errors.ResourceNotFound, "study has no completed trials")
	}

	best := trials[0]
	bestValue := best.Value()
	for _, t := range trials[1:] {
		v := t.Value()
		if s.directions[0] == DirectionMinimize && v < bestValue ||
			s.directions[0] == DirectionMaximize && v > bestValue {
			best, bestValue = t, v
		}
	}
	return best, nil
}

// Objective evaluates a sampled trial and returns its objective
// value(s).
type Objective func(trial *Trial) ([]float64, error)

type optimizeOptions struct {
	nJobs int
}

// OptimizeOption configures an Optimize run.
type OptimizeOption func(*optimizeOptions)

// WithNJobs runs up to n trials concurrently. Suggestion calls remain
// serialized per study; only objective evaluation parallelizes.
func WithNJobs(n int) OptimizeOption {
	return func(o *optimizeOptions) {
		o.nJobs = n
	}
}

// Optimize runs nTrials ask/evaluate/tell cycles against the study.
// Failed objective evaluations mark their trial failed and continue;
// a storage failure aborts the run.
func (s *Study) Optimize(ctx context.Context, space SearchSpace, objective Objective, nTrials int, opts ...OptimizeOption) error {
	options := optimizeOptions{nJobs: 1}
	for _, opt := range opts {
		opt(&options)
	}
	if options.nJobs < 1 {
		options.nJobs = 1
	}

	logger := logging.GetLogger()

	p := pool.New().WithMaxGoroutines(options.nJobs).WithErrors()
	for i := 0; i < nTrials; i++ {
		p.Go(func() error {
			if err := errors.CheckContext(ctx, "optimize"); err != nil {
				return err
			}

			trial, err := s.Ask(space)
			if err != nil {
				return err
			}

			values, err := objective(trial)
			if err != nil {
				logger.Warn(ctx, "trial %d failed: %v", trial.Number, err)
				return s.TellState(trial.ID, TrialStateFailed)
			}
			return s.Tell(trial.ID, values...)
		})
	}
	return p.Wait()
}

// signFor maps a direction onto the internal minimization convention.
func signFor(d Direction) float64 {
	if d == DirectionMaximize {
		return -1
	}
	return 1
}

// NormalizedValues returns a trial's objective values flipped so that
// lower is always better, one per study direction. Missing values
// surface as +Inf so incomplete trials never dominate.
func (s *Study) NormalizedValues(t *Trial) []float64 {
	values := make([]float64, len(s.directions))
	for i, d := range s.directions {
		if i >= len(t.Values) {
			values[i] = math.Inf(1)
			continue
		}
		values[i] = t.Values[i] * signFor(d)
	}
	return values
}
