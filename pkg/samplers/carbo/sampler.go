// Package carbo implements a Bayesian-optimization sampler plugin: a
// Gaussian-process surrogate over the numeric part of the search
// space, scored by a configurable acquisition function, with random
// startup trials and a random fallback for independent sampling.
package carbo

import (
	"context"
	"math"

	"github.com/jpfeil/hubsampler/pkg/core"
	"github.com/jpfeil/hubsampler/pkg/errors"
	"github.com/jpfeil/hubsampler/pkg/logging"
	"github.com/jpfeil/hubsampler/pkg/samplers"
	"github.com/jpfeil/hubsampler/pkg/utils"
)

const (
	defaultNStartupTrials = 10
	defaultNCandidates    = 64
	defaultBeta           = 2.0
	defaultKernelWidth    = 0.5
)

// Sampler is the CARBO Bayesian-optimization sampler plugin.
type Sampler struct {
	nStartupTrials int
	nCandidates    int
	beta           float64
	kernelWidth    float64
	deterministic  bool
	seed           int64
	acquisition    AcquisitionFunc

	rng      *core.RandomState
	fallback *samplers.RandomSampler
	logger   *logging.Logger
}

// Option configures a Sampler at construction.
type Option func(*Sampler)

// WithNStartupTrials sets how many completed trials must exist before
// the surrogate takes over from random sampling.
func WithNStartupTrials(n int) Option {
	return func(s *Sampler) {
		s.nStartupTrials = n
	}
}

// WithNCandidates sets the number of random candidates scored by the
// acquisition function per suggestion.
func WithNCandidates(n int) Option {
	return func(s *Sampler) {
		s.nCandidates = n
	}
}

// WithBeta sets the exploration weight of the default
// lower-confidence-bound acquisition.
func WithBeta(beta float64) Option {
	return func(s *Sampler) {
		s.beta = beta
	}
}

// WithKernelWidth sets the RBF kernel width of the surrogate over the
// unit cube.
func WithKernelWidth(sigma float64) Option {
	return func(s *Sampler) {
		s.kernelWidth = sigma
	}
}

// WithDeterministicObjective declares the objective noise-free, which
// tightens the surrogate's variance floor.
func WithDeterministicObjective(deterministic bool) Option {
	return func(s *Sampler) {
		s.deterministic = deterministic
	}
}

// WithSeed fixes the sampler's random seed.
func WithSeed(seed int64) Option {
	return func(s *Sampler) {
		s.seed = seed
	}
}

// WithAcquisitionFunc replaces the default lower-confidence-bound
// acquisition.
func WithAcquisitionFunc(f AcquisitionFunc) Option {
	return func(s *Sampler) {
		s.acquisition = f
	}
}

// New creates the sampler.
func New(opts ...Option) (*Sampler, error) {
	s := &Sampler{
		nStartupTrials: defaultNStartupTrials,
		nCandidates:    defaultNCandidates,
		beta:           defaultBeta,
		kernelWidth:    defaultKernelWidth,
		acquisition:    LowerConfidenceBound,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.nStartupTrials < 0 {
		return nil, errors.Newf(errors.InvalidConfiguration,
			"startup trial count must be non-negative, got %d", s.nStartupTrials)
	}
	if s.nCandidates < 1 {
		s.nCandidates = defaultNCandidates
	}
	if s.kernelWidth <= 0 {
		s.kernelWidth = defaultKernelWidth
	}

	s.rng = core.NewRandomState(s.seed)
	s.fallback = samplers.NewRandomSampler(s.seed)
	s.logger = logging.GetLogger()
	return s, nil
}

// InferRelativeSearchSpace returns the numeric, non-single part of the
// intersection search space over completed trials.
func (s *Sampler) InferRelativeSearchSpace(study *core.Study, trial *core.Trial) core.SearchSpace {
	trials, err := study.CompletedTrials()
	if err != nil {
		return core.SearchSpace{}
	}

	space := core.IntersectionSearchSpace(trials)
	for name, dist := range space {
		switch dist.(type) {
		case core.FloatDistribution, core.IntDistribution:
		default:
			delete(space, name)
		}
	}
	return space
}

// SampleRelative fits the surrogate to the completed-trial history and
// proposes the candidate minimizing the acquisition function. An empty
// proposal (startup phase or empty space) defers to independent
// sampling.
func (s *Sampler) SampleRelative(study *core.Study, trial *core.Trial, space core.SearchSpace) (map[string]interface{}, error) {
	if len(space) == 0 {
		return nil, nil
	}

	trials, err := study.CompletedTrials()
	if err != nil {
		return nil, err
	}
	names := utils.SortedKeys(space)
	observed := observations(trials, names, space)
	if len(observed) == 0 || len(observed) < s.nStartupTrials {
		return nil, nil
	}

	// Standardize objective values, sign-flipped so lower is better.
	y := make([]float64, len(observed))
	for i, obs := range observed {
		y[i] = study.NormalizedValues(obs.trial)[0]
	}
	standardize(y)

	noise := 1e-4
	if s.deterministic {
		noise = 1e-8
	}
	gp := &gaussianProcess{sigma: s.kernelWidth, noise: noise}
	bestSoFar := math.Inf(1)
	for i, obs := range observed {
		gp.add(obs.point, y[i])
		if y[i] < bestSoFar {
			bestSoFar = y[i]
		}
	}

	params := AcquisitionParams{Beta: s.beta, Xi: 0.01, BestSoFar: bestSoFar}
	rng := s.rng.Rand()

	var bestPoint []float64
	bestScore := math.Inf(1)
	candidate := make([]float64, len(names))
	for i := 0; i < s.nCandidates; i++ {
		for d := range candidate {
			candidate[d] = rng.Float64()
		}
		mean, variance := gp.predict(candidate)
		score := s.acquisition(mean, variance, params)
		if score < bestScore {
			bestScore = score
			bestPoint = append(bestPoint[:0], candidate...)
		}
	}
	if bestPoint == nil {
		return nil, nil
	}

	s.logger.Debug(context.Background(), "surrogate proposal over %d observations, acquisition=%f",
		len(observed), bestScore)

	proposal := make(map[string]interface{}, len(names))
	for d, name := range names {
		proposal[name] = externalValue(space[name], bestPoint[d])
	}
	return proposal, nil
}

// SampleIndependent delegates to the embedded random sampler.
func (s *Sampler) SampleIndependent(study *core.Study, trial *core.Trial, name string, dist core.Distribution) (interface{}, error) {
	return s.fallback.SampleIndependent(study, trial, name, dist)
}

// ReseedRNG reseeds the sampler's random state and the embedded
// random sampler's.
func (s *Sampler) ReseedRNG() {
	s.rng.Reseed()
	s.fallback.ReseedRNG()
}

type observation struct {
	trial *core.Trial
	point []float64
}

// observations extracts the unit-cube coordinates of every completed
// trial that sampled all of the given parameters.
func observations(trials []*core.Trial, names []string, space core.SearchSpace) []observation {
	var observed []observation
	for _, t := range trials {
		if t.State != core.TrialStateComplete || len(t.Values) == 0 {
			continue
		}
		point := make([]float64, 0, len(names))
		ok := true
		for _, name := range names {
			value, exists := t.Params[name]
			if !exists {
				ok = false
				break
			}
			u, numeric := unitValue(space[name], value)
			if !numeric {
				ok = false
				break
			}
			point = append(point, u)
		}
		if ok {
			observed = append(observed, observation{trial: t, point: point})
		}
	}
	return observed
}

// standardize rescales values to zero mean and unit variance in place.
func standardize(y []float64) {
	if len(y) == 0 {
		return
	}
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var variance float64
	for _, v := range y {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(y))

	std := math.Sqrt(variance)
	if std == 0 {
		std = 1
	}
	for i := range y {
		y[i] = (y[i] - mean) / std
	}
}
