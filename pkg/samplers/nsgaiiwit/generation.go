package nsgaiiwit

import (
	"context"

	"github.com/jpfeil/hubsampler/pkg/core"
	"github.com/jpfeil/hubsampler/pkg/errors"
)

// GenerationKey is the system-attribute key carrying a trial's
// generation index. Once written for a trial it never changes.
const GenerationKey = "nsga2:generation"

// TrialGeneration resolves the generation index of a trial, assigning
// and persisting one if the trial does not carry it yet.
//
// The resolution is a pure function of the completed-trial snapshot
// visible at call time. Under concurrent callers two workers can
// observe the same nearly-full generation and both decide to keep
// filling it, so a generation may slightly overshoot the population
// size; that is tolerated rather than synchronized away. The persisted
// tag is write-once per trial, which keeps repeated resolutions
// idempotent.
func (s *Sampler) TrialGeneration(study *core.Study, trial *core.Trial) (int, error) {
	if generation, ok := generationAttr(trial); ok {
		return generation, nil
	}

	trials, err := study.CompletedTrials()
	if err != nil {
		return 0, err
	}

	maxGeneration, maxGenerationCount := 0, 0
	for i := len(trials) - 1; i >= 0; i-- {
		generation := -1 // pre-existing trials carry no tag
		if g, ok := generationAttr(trials[i]); ok {
			generation = g
		}

		switch {
		case generation < maxGeneration:
		case generation > maxGeneration:
			maxGeneration = generation
			maxGenerationCount = 1
		default:
			maxGenerationCount++
		}
	}

	var generation int
	switch {
	case len(trials) > s.populationSize && maxGeneration < 1:
		// A pool larger than the population size was injected before
		// the evolutionary loop started: skip the generation-0 filling
		// phase entirely.
		generation = 1
	case maxGenerationCount < s.populationSize:
		generation = maxGeneration
	default:
		generation = maxGeneration + 1
		s.logger.Debug(context.Background(), "generation %d is full, starting generation %d",
			maxGeneration, generation)
	}

	if err := study.Storage().SetTrialSystemAttr(trial.ID, GenerationKey, generation); err != nil {
		return 0, errors.Wrap(err, errors.StorageFailed, "failed to persist generation tag")
	}
	return generation, nil
}

// Population returns the completed trials belonging to a generation.
// Generation 0 is the bootstrap pool: it contains every completed
// trial regardless of its own tag, so pre-existing and injected trials
// can serve as parents for the first bred generation. Positive
// generations filter strictly on the persisted tag.
func (s *Sampler) Population(study *core.Study, generation int) ([]*core.Trial, error) {
	trials, err := study.CompletedTrials()
	if err != nil {
		return nil, err
	}

	if generation == 0 {
		return append([]*core.Trial(nil), trials...), nil
	}

	var population []*core.Trial
	for _, t := range trials {
		if g, ok := generationAttr(t); ok && g == generation {
			population = append(population, t)
		}
	}
	return population, nil
}

// generationAttr reads the persisted generation tag, tolerating the
// numeric widening a JSON storage round-trip applies.
func generationAttr(t *core.Trial) (int, bool) {
	v, ok := t.SystemAttrs[GenerationKey]
	if !ok {
		return 0, false
	}
	switch g := v.(type) {
	case int:
		return g, true
	case int64:
		return int(g), true
	case float64:
		return int(g), true
	}
	return 0, false
}
