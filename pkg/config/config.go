// Package config loads and validates sampler configuration from YAML
// and builds ready-to-use sampler instances from it.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jpfeil/hubsampler/pkg/core"
	"github.com/jpfeil/hubsampler/pkg/errors"
	"github.com/jpfeil/hubsampler/pkg/samplers/carbo"
	"github.com/jpfeil/hubsampler/pkg/samplers/nsgaiiwit"
)

// Config is the top-level sampler configuration.
type Config struct {
	// Seed applies to every sampler built from this config. Zero means
	// time-based seeding.
	Seed int64 `yaml:"seed,omitempty"`

	NSGAII *NSGAIIConfig `yaml:"nsgaii,omitempty" validate:"omitempty"`
	CARBO  *CARBOConfig  `yaml:"carbo,omitempty" validate:"omitempty"`
}

// NSGAIIConfig configures the NSGA-II-with-initial-trials sampler.
type NSGAIIConfig struct {
	PopulationSize int      `yaml:"population_size" validate:"required,gt=0"`
	CrossoverProb  float64  `yaml:"crossover_prob,omitempty" validate:"gte=0,lte=1"`
	SwappingProb   float64  `yaml:"swapping_prob,omitempty" validate:"gte=0,lte=1"`
	MutationProb   *float64 `yaml:"mutation_prob,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// CARBOConfig configures the CARBO Bayesian sampler.
type CARBOConfig struct {
	NStartupTrials         int     `yaml:"n_startup_trials,omitempty" validate:"gte=0"`
	NCandidates            int     `yaml:"n_candidates,omitempty" validate:"gte=0"`
	Beta                   float64 `yaml:"beta,omitempty" validate:"gte=0"`
	DeterministicObjective bool    `yaml:"deterministic_objective,omitempty"`
}

// Default returns a configuration with library defaults filled in.
func Default() *Config {
	return &Config{
		NSGAII: &NSGAIIConfig{
			PopulationSize: 50,
			CrossoverProb:  0.9,
			SwappingProb:   0.5,
		},
		CARBO: &CARBOConfig{
			NStartupTrials: 10,
			NCandidates:    64,
			Beta:           2.0,
		},
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidConfiguration, "failed to read config file")
	}
	return Parse(data)
}

// Parse decodes and validates YAML configuration bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.InvalidConfiguration, "failed to parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BuildNSGAII constructs the NSGA-II sampler described by the config.
func (c *Config) BuildNSGAII() (core.Sampler, error) {
	if c.NSGAII == nil {
		return nil, errors.New(errors.InvalidConfiguration, "no nsgaii section in config")
	}
	opts := []nsgaiiwit.Option{
		nsgaiiwit.WithPopulationSize(c.NSGAII.PopulationSize),
		nsgaiiwit.WithSeed(c.Seed),
	}
	if c.NSGAII.CrossoverProb > 0 {
		opts = append(opts, nsgaiiwit.WithCrossoverProb(c.NSGAII.CrossoverProb))
	}
	if c.NSGAII.SwappingProb > 0 {
		opts = append(opts, nsgaiiwit.WithSwappingProb(c.NSGAII.SwappingProb))
	}
	if c.NSGAII.MutationProb != nil {
		opts = append(opts, nsgaiiwit.WithMutationProb(*c.NSGAII.MutationProb))
	}
	return nsgaiiwit.New(opts...)
}

// BuildCARBO constructs the CARBO sampler described by the config.
func (c *Config) BuildCARBO() (core.Sampler, error) {
	if c.CARBO == nil {
		return nil, errors.New(errors.InvalidConfiguration, "no carbo section in config")
	}
	opts := []carbo.Option{
		carbo.WithNStartupTrials(c.CARBO.NStartupTrials),
		carbo.WithSeed(c.Seed),
		carbo.WithDeterministicObjective(c.CARBO.DeterministicObjective),
	}
	if c.CARBO.NCandidates > 0 {
		opts = append(opts, carbo.WithNCandidates(c.CARBO.NCandidates))
	}
	if c.CARBO.Beta > 0 {
		opts = append(opts, carbo.WithBeta(c.CARBO.Beta))
	}
	return carbo.New(opts...)
}

// RegisterSamplers registers factories for every configured sampler.
func (c *Config) RegisterSamplers(registry *core.SamplerRegistry) {
	if c.NSGAII != nil {
		registry.Register("nsgaiiwit", c.BuildNSGAII)
	}
	if c.CARBO != nil {
		registry.Register("carbo", c.BuildCARBO)
	}
}
