package engine

import "time"

// Outcome is how an operation ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// Observer receives operation telemetry. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	OperationStarted(kind Kind)
	OperationFinished(kind Kind, outcome Outcome, elapsed time.Duration)
	CandidatesScanned(kind Kind, n int)
	EventEmitted(kind Kind)
	EventDropped()
}

// NopObserver ignores everything.
type NopObserver struct{}

func (NopObserver) OperationStarted(Kind)                          {}
func (NopObserver) OperationFinished(Kind, Outcome, time.Duration) {}
func (NopObserver) CandidatesScanned(Kind, int)                    {}
func (NopObserver) EventEmitted(Kind)                              {}
func (NopObserver) EventDropped()                                  {}
