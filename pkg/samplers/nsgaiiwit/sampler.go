// Package nsgaiiwit implements an NSGA-II sampler variant that
// tolerates pre-existing trials: completed trials that predate the
// evolutionary loop join a catch-all generation-0 bootstrap pool and
// can serve as parents for the first bred generation.
package nsgaiiwit

import (
	"github.com/jpfeil/hubsampler/pkg/core"
	"github.com/jpfeil/hubsampler/pkg/errors"
	"github.com/jpfeil/hubsampler/pkg/logging"
	"github.com/jpfeil/hubsampler/pkg/samplers"
)

const (
	defaultPopulationSize = 50
	defaultCrossoverProb  = 0.9
	defaultSwappingProb   = 0.5
)

// Sampler is the NSGA-II-with-initial-trials sampler plugin.
type Sampler struct {
	populationSize  int
	crossoverProb   float64
	swappingProb    float64
	mutationProb    *float64
	seed            int64
	constraintsFunc ConstraintsFunc
	crossover       Crossover
	mutation        Mutation

	rng    *core.RandomState
	child  *childGenerationStrategy
	random *samplers.RandomSampler
	logger *logging.Logger
}

// Option configures a Sampler at construction.
type Option func(*Sampler)

// WithPopulationSize sets the target number of trials per generation.
// The target is soft under concurrent workers; see TrialGeneration.
func WithPopulationSize(n int) Option {
	return func(s *Sampler) {
		s.populationSize = n
	}
}

// WithCrossoverProb sets the probability of applying crossover when
// breeding a child; otherwise a single parent is inherited.
func WithCrossoverProb(p float64) Option {
	return func(s *Sampler) {
		s.crossoverProb = p
	}
}

// WithSwappingProb sets the per-parameter swap probability of the
// default uniform crossover.
func WithSwappingProb(p float64) Option {
	return func(s *Sampler) {
		s.swappingProb = p
	}
}

// WithMutationProb fixes the per-parameter mutation probability.
// Unset, the probability defaults to 1/dimensionality of the proposal.
func WithMutationProb(p float64) Option {
	return func(s *Sampler) {
		s.mutationProb = &p
	}
}

// WithSeed fixes the sampler's random seed. Identical seeds reproduce
// identical proposal sequences across runs and processes.
func WithSeed(seed int64) Option {
	return func(s *Sampler) {
		s.seed = seed
	}
}

// WithConstraintsFunc enables constrained domination using the given
// constraint evaluation.
func WithConstraintsFunc(f ConstraintsFunc) Option {
	return func(s *Sampler) {
		s.constraintsFunc = f
	}
}

// WithCrossover injects a custom crossover operator.
func WithCrossover(c Crossover) Option {
	return func(s *Sampler) {
		s.crossover = c
	}
}

// WithMutation injects a custom mutation operator.
func WithMutation(m Mutation) Option {
	return func(s *Sampler) {
		s.mutation = m
	}
}

// New creates the sampler. A non-positive population size is a
// configuration error and fails fast.
func New(opts ...Option) (*Sampler, error) {
	s := &Sampler{
		populationSize: defaultPopulationSize,
		crossoverProb:  defaultCrossoverProb,
		swappingProb:   defaultSwappingProb,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.populationSize < 1 {
		return nil, errors.Newf(errors.InvalidConfiguration,
			"population size must be a positive integer, got %d", s.populationSize)
	}

	if s.crossover == nil {
		s.crossover = UniformCrossover{SwappingProb: s.swappingProb}
	}
	if s.mutation == nil {
		s.mutation = UniformMutation{}
	}

	s.rng = core.NewRandomState(s.seed)
	s.random = samplers.NewRandomSampler(s.seed)
	s.logger = logging.GetLogger()
	s.child = &childGenerationStrategy{
		crossover:     s.crossover,
		mutation:      s.mutation,
		crossoverProb: s.crossoverProb,
		mutationProb:  s.mutationProb,
		rng:           s.rng,
		dominates:     s.dominates,
	}

	return s, nil
}

// PopulationSize returns the configured generation size target.
func (s *Sampler) PopulationSize() int {
	return s.populationSize
}

// InferRelativeSearchSpace proposes jointly over the intersection of
// all completed trials' search spaces.
func (s *Sampler) InferRelativeSearchSpace(study *core.Study, trial *core.Trial) core.SearchSpace {
	trials, err := study.CompletedTrials()
	if err != nil {
		return core.SearchSpace{}
	}
	return core.IntersectionSearchSpace(trials)
}

// SampleRelative breeds a child proposal from the elite population of
// the trial's parent generation. An empty proposal (bootstrap phase,
// empty space, or no parents) tells the engine to sample every
// parameter independently instead.
func (s *Sampler) SampleRelative(study *core.Study, trial *core.Trial, space core.SearchSpace) (map[string]interface{}, error) {
	if len(space) == 0 {
		return nil, nil
	}

	generation, err := s.TrialGeneration(study, trial)
	if err != nil {
		return nil, err
	}
	parentGeneration := generation - 1
	if parentGeneration < 0 {
		return nil, nil
	}

	population, err := s.Population(study, parentGeneration)
	if err != nil {
		return nil, err
	}
	parents := s.selectElite(study, population)
	if len(parents) == 0 {
		return nil, nil
	}

	return s.child.propose(study, space, parents)
}

// SampleIndependent delegates to the embedded random sampler.
func (s *Sampler) SampleIndependent(study *core.Study, trial *core.Trial, name string, dist core.Distribution) (interface{}, error) {
	return s.random.SampleIndependent(study, trial, name, dist)
}

// ReseedRNG reseeds the sampler's random state and that of the
// embedded random sampler.
func (s *Sampler) ReseedRNG() {
	s.rng.Reseed()
	s.random.ReseedRNG()
}
