package core

import (
	"encoding/json"
	"fmt"
)

// Distribution describes the domain a single parameter is drawn from.
// Concrete distributions are value types; SearchSpace maps parameter
// names to their distributions.
type Distribution interface {
	// Contains reports whether value lies inside the domain.
	Contains(value interface{}) bool

	// Single reports whether the domain holds exactly one value.
	Single() bool
}

// SearchSpace maps parameter name to its allowed distribution.
type SearchSpace map[string]Distribution

// FloatDistribution is a continuous or step-discretized float domain.
// When Log is set the domain is sampled in log scale; Low must then be
// positive. Step of zero means continuous.
type FloatDistribution struct {
	Low  float64
	High float64
	Step float64
	Log  bool
}

func (d FloatDistribution) Contains(value interface{}) bool {
	v, ok := asFloat(value)
	if !ok {
		return false
	}
	return v >= d.Low && v <= d.High
}

func (d FloatDistribution) Single() bool {
	if d.Step > 0 {
		return d.High-d.Low < d.Step
	}
	return d.Low == d.High
}

// IntDistribution is an integer domain, optionally log-scaled or
// step-discretized. Step of zero is treated as one.
type IntDistribution struct {
	Low  int
	High int
	Step int
	Log  bool
}

func (d IntDistribution) Contains(value interface{}) bool {
	v, ok := asFloat(value)
	if !ok {
		return false
	}
	return v >= float64(d.Low) && v <= float64(d.High) && v == float64(int(v))
}

func (d IntDistribution) Single() bool {
	step := d.Step
	if step < 1 {
		step = 1
	}
	return d.High-d.Low < step
}

// CategoricalDistribution is a finite unordered choice set.
type CategoricalDistribution struct {
	Choices []interface{}
}

func (d CategoricalDistribution) Contains(value interface{}) bool {
	for _, c := range d.Choices {
		if c == value {
			return true
		}
	}
	return false
}

func (d CategoricalDistribution) Single() bool {
	return len(d.Choices) == 1
}

// IntersectionSearchSpace computes the search space shared by every
// completed trial: a parameter survives only if all trials drew it
// from an identical distribution and the domain is not a single point.
// Samplers use this to decide which parameters are eligible for
// relative (model-based) sampling.
func IntersectionSearchSpace(trials []*Trial) SearchSpace {
	var space SearchSpace
	for _, t := range trials {
		if t.State != TrialStateComplete {
			continue
		}
		if space == nil {
			space = make(SearchSpace, len(t.Distributions))
			for name, dist := range t.Distributions {
				space[name] = dist
			}
			continue
		}
		for name, dist := range space {
			other, ok := t.Distributions[name]
			if !ok || !DistributionsEqual(dist, other) {
				delete(space, name)
			}
		}
	}
	for name, dist := range space {
		if dist.Single() {
			delete(space, name)
		}
	}
	if space == nil {
		return SearchSpace{}
	}
	return space
}

// DistributionsEqual reports whether two distributions describe the
// same domain. Categorical choice sets are compared element-wise;
// an interface equality check would panic on the slice field.
func DistributionsEqual(a, b Distribution) bool {
	switch da := a.(type) {
	case FloatDistribution:
		db, ok := b.(FloatDistribution)
		return ok && da == db
	case IntDistribution:
		db, ok := b.(IntDistribution)
		return ok && da == db
	case CategoricalDistribution:
		db, ok := b.(CategoricalDistribution)
		if !ok || len(da.Choices) != len(db.Choices) {
			return false
		}
		for i := range da.Choices {
			if da.Choices[i] != db.Choices[i] {
				return false
			}
		}
		return true
	}
	return false
}

// distributionJSON is the storage encoding of a distribution.
type distributionJSON struct {
	Type    string        `json:"type"`
	Low     float64       `json:"low,omitempty"`
	High    float64       `json:"high,omitempty"`
	Step    float64       `json:"step,omitempty"`
	Log     bool          `json:"log,omitempty"`
	Choices []interface{} `json:"choices,omitempty"`
}

// MarshalDistribution encodes a distribution for persistent storage.
func MarshalDistribution(d Distribution) ([]byte, error) {
	var enc distributionJSON
	switch dist := d.(type) {
	case FloatDistribution:
		enc = distributionJSON{Type: "float", Low: dist.Low, High: dist.High, Step: dist.Step, Log: dist.Log}
	case IntDistribution:
		enc = distributionJSON{Type: "int", Low: float64(dist.Low), High: float64(dist.High), Step: float64(dist.Step), Log: dist.Log}
	case CategoricalDistribution:
		enc = distributionJSON{Type: "categorical", Choices: dist.Choices}
	default:
		return nil, fmt.Errorf("unknown distribution type %T", d)
	}
	return json.Marshal(enc)
}

// UnmarshalDistribution decodes a distribution previously encoded with
// MarshalDistribution.
func UnmarshalDistribution(data []byte) (Distribution, error) {
	var enc distributionJSON
	if err := json.Unmarshal(data, &enc); err != nil {
		return nil, err
	}
	switch enc.Type {
	case "float":
		return FloatDistribution{Low: enc.Low, High: enc.High, Step: enc.Step, Log: enc.Log}, nil
	case "int":
		return IntDistribution{Low: int(enc.Low), High: int(enc.High), Step: int(enc.Step), Log: enc.Log}, nil
	case "categorical":
		return CategoricalDistribution{Choices: enc.Choices}, nil
	default:
		return nil, fmt.Errorf("unknown distribution type %q", enc.Type)
	}
}
