package core

// Storage is the trial persistence contract samplers run against. The
// engine owns trial creation and completion; samplers read frozen
// snapshots and write individual system attributes.
//
// Implementations must make each call atomic on its own, but callers
// must not assume any cross-call locking: two concurrent readers can
// observe the same snapshot and race to derived decisions. See the
// generation resolver in pkg/samplers/nsgaiiwit for the tolerance this
// implies.
type Storage interface {
	// CreateTrial adds a new running trial to the study and returns
	// its storage-wide ID.
	CreateTrial(studyID string) (int, error)

	// GetTrial returns a frozen copy of the identified trial.
	GetTrial(trialID int) (*Trial, error)

	// GetTrials returns frozen copies of the study's trials, filtered
	// to the given states. No states means all trials. Order follows
	// trial number.
	GetTrials(studyID string, states ...TrialState) ([]*Trial, error)

	// SetTrialParam records a sampled parameter and the distribution
	// it was drawn from.
	SetTrialParam(trialID int, name string, value interface{}, dist Distribution) error

	// SetTrialSystemAttr sets one system attribute. The call is atomic;
	// write-once semantics for a given key are the caller's contract,
	// enforced by checking presence before computing a value.
	SetTrialSystemAttr(trialID int, key string, value interface{}) error

	// TellTrial moves a trial into a terminal state, recording its
	// objective values for completed trials.
	TellTrial(trialID int, state TrialState, values []float64) error

	// Close releases any resources held by the storage.
	Close() error
}
