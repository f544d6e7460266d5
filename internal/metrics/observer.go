package metrics

import (
	"time"

	"github.com/kk-code-lab/rscan/internal/engine"
)

// engineObserver implements engine.Observer using the Prometheus metrics
// declared in this package.
type engineObserver struct{}

// NewEngineObserver creates an observer that records operation metrics into
// the counters, gauges and histograms declared in metrics.go.
func NewEngineObserver() engine.Observer {
	return &engineObserver{}
}

func (o *engineObserver) OperationStarted(kind engine.Kind) {
	OperationsStarted.WithLabelValues(string(kind)).Inc()
	OperationsActive.WithLabelValues(string(kind)).Inc()
}

func (o *engineObserver) OperationFinished(kind engine.Kind, outcome engine.Outcome, elapsed time.Duration) {
	OperationsFinished.WithLabelValues(string(kind), string(outcome)).Inc()
	OperationsActive.WithLabelValues(string(kind)).Dec()
	OperationDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

func (o *engineObserver) CandidatesScanned(kind engine.Kind, n int) {
	if n > 0 {
		CandidatesScanned.WithLabelValues(string(kind)).Add(float64(n))
	}
}

func (o *engineObserver) EventEmitted(kind engine.Kind) {
	EventsEmitted.WithLabelValues(string(kind)).Inc()
}

func (o *engineObserver) EventDropped() {
	EventsDropped.Inc()
}
