package worker

import (
	"sync/atomic"
	"time"

	"github.com/fairydevices/go-mimiio/mlog"
)

// MonitorPollInterval matches the original's Poco::Thread::sleep(10)
// polling cadence in mimiioAsynchronousCallbackAPIMonitor::run().
const MonitorPollInterval = 10 * time.Millisecond

// Monitor is the supervising goroutine: it polls Tx and Rx's errorno
// atomics, propagates the first non-zero observation into the session's
// first-error slot, and requests the sibling worker to finish.
type Monitor struct {
	tx, rx *State

	// firstError is the session's first-error slot: written once via
	// compare-and-swap from 0, per invariant #6.
	firstError *atomic.Int32

	finishRequested atomic.Bool
}

// NewMonitor builds a monitor over the given workers' states, writing the
// first observed error into firstError (owned by the session façade so the
// façade's Error() method can read it directly).
func NewMonitor(tx, rx *State, firstError *atomic.Int32) *Monitor {
	return &Monitor{tx: tx, rx: rx, firstError: firstError}
}

// RequestFinish asks the monitor to stop polling at its next tick.
func (m *Monitor) RequestFinish() { m.finishRequested.Store(true) }

// Run polls until one worker reports an error, both workers finish, or it
// is itself asked to stop.
func (m *Monitor) Run(log *mlog.Logger) {
	for {
		if m.finishRequested.Load() {
			return
		}
		if m.tx.Finished() && m.rx.Finished() {
			return
		}

		if code := m.tx.Errorno(); code != 0 {
			m.propagate(code, log)
			return
		}
		if code := m.rx.Errorno(); code != 0 {
			m.propagate(code, log)
			return
		}

		time.Sleep(MonitorPollInterval)
	}
}

func (m *Monitor) propagate(code int32, log *mlog.Logger) {
	if m.firstError.CompareAndSwap(0, code) {
		log.Error("monitor: first error recorded: %d", code)
	}
	m.tx.RequestFinish()
	m.rx.RequestFinish()
}
