package results

import "time"

type Experiment struct {

	// ID is generated (UUID) when empty
	ID       string
	Datetime int64
	Task     string

	FeatureMode string
	NumFeatures int

	// SelfTest is true when models were evaluated on random
	// splits of the training set (and not on an external set)
	SelfTest bool
	Comment  string
}

type Trial struct {
	ExperimentID string
	Model        string
	Trial        int
	Score        float64

	// Latency is a median prediction time within the trial
	Latency   time.Duration
	TrainSize int
	TestSize  int
}
