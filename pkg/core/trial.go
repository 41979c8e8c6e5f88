package core

// TrialState represents the lifecycle state of a trial.
type TrialState int

const (
	TrialStateRunning TrialState = iota
	TrialStateComplete
	TrialStateFailed
	TrialStatePruned
)

// String provides human-readable trial states.
func (s TrialState) String() string {
	switch s {
	case TrialStateRunning:
		return "RUNNING"
	case TrialStateComplete:
		return "COMPLETE"
	case TrialStateFailed:
		return "FAILED"
	case TrialStatePruned:
		return "PRUNED"
	default:
		return "UNKNOWN"
	}
}

// Finished reports whether the trial has reached a terminal state.
func (s TrialState) Finished() bool {
	return s != TrialStateRunning
}

// Trial is a frozen snapshot of one evaluation attempt. Instances
// returned by Storage are copies: mutating one never changes stored
// state. A completed trial is immutable; samplers only read it and,
// for the generation tag, perform a single conditional write through
// Storage.SetTrialSystemAttr.
type Trial struct {
	// ID is the storage-wide unique ordinal identifier.
	ID int

	// Number is the trial's ordinal within its study.
	Number int

	State TrialState

	// Params maps parameter name to its externally-typed value.
	Params map[string]interface{}

	// Distributions records the domain each parameter was drawn from.
	Distributions SearchSpace

	// SystemAttrs is free-form key/value storage attached to the trial.
	SystemAttrs map[string]interface{}

	// Values holds the objective value(s); nil until the trial completes.
	Values []float64
}

// Value returns the first objective value. It is only meaningful for
// completed single- or multi-objective trials.
func (t *Trial) Value() float64 {
	if len(t.Values) == 0 {
		return 0
	}
	return t.Values[0]
}

// ParamFloat returns the named parameter coerced to float64. The
// second return value reports whether the parameter exists and is
// numeric.
func (t *Trial) ParamFloat(name string) (float64, bool) {
	v, ok := t.Params[name]
	if !ok {
		return 0, false
	}
	return asFloat(v)
}

func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}
