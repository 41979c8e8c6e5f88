package core

import (
	"sync"

	"github.com/jpfeil/hubsampler/pkg/errors"
)

// Sampler is the plugin surface the study engine drives. A sampler
// never runs standalone; the engine calls InferRelativeSearchSpace and
// SampleRelative once when a trial begins, then SampleIndependent for
// any requested parameter the relative proposal did not cover.
type Sampler interface {
	// InferRelativeSearchSpace returns the subset of the search space
	// this sampler wants to propose jointly for the given trial.
	InferRelativeSearchSpace(study *Study, trial *Trial) SearchSpace

	// SampleRelative proposes values for the inferred space. An empty
	// (or nil) proposal is not an error: it signals that the engine
	// should fall back to independent sampling for every parameter.
	SampleRelative(study *Study, trial *Trial, space SearchSpace) (map[string]interface{}, error)

	// SampleIndependent proposes a value for a single parameter.
	SampleIndependent(study *Study, trial *Trial, name string, dist Distribution) (interface{}, error)

	// ReseedRNG replaces the sampler's random state with a fresh seed.
	ReseedRNG()
}

// SamplerFactory constructs a Sampler instance.
type SamplerFactory func() (Sampler, error)

// SamplerRegistry maintains the set of loadable sampler plugins.
type SamplerRegistry struct {
	mu        sync.RWMutex
	factories map[string]SamplerFactory
}

// NewSamplerRegistry creates an empty registry.
func NewSamplerRegistry() *SamplerRegistry {
	return &SamplerRegistry{
		factories: make(map[string]SamplerFactory),
	}
}

// Register adds a sampler factory under the given name, replacing any
// previous registration.
func (r *SamplerRegistry) Register(name string, factory SamplerFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create instantiates a registered sampler by name.
func (r *SamplerRegistry) Create(name string) (Sampler, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()
	if !exists {
		return nil, errors.Newf(errors.ResourceNotFound, "unknown sampler type: %s", name)
	}
	return factory()
}

// Names lists the registered sampler names.
func (r *SamplerRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}
