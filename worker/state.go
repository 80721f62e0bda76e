// Package worker implements the three cooperating goroutines that drive a
// session: the transmit worker, the receive worker, and the monitor that
// supervises both. Grounded on
// _examples/original_source/src/worker/{mimiioTxWorker,mimiioRxWorker}.cpp
// and mimiioAsynchronousCallbackAPIController.{hpp,cpp}, translated from
// Poco::Runnable/Poco::Thread into goroutines synchronized with
// sync/atomic instead of a thread pool and volatile bools.
package worker

import "sync/atomic"

// State is the atomic {finish_requested, finished, errorno} triple shared
// by a worker and its monitor/caller. Only the owning worker ever writes
// Finished/Errorno; any goroutine may request a finish.
type State struct {
	finishRequested atomic.Bool
	finished        atomic.Bool
	errorno         atomic.Int32
}

// RequestFinish asks the worker to exit at the top of its next iteration.
func (s *State) RequestFinish() { s.finishRequested.Store(true) }

// FinishRequested reports whether a finish has been requested.
func (s *State) FinishRequested() bool { return s.finishRequested.Load() }

// Finished reports whether the worker has exited its loop.
func (s *State) Finished() bool { return s.finished.Load() }

// Errorno returns the worker's recorded error code, or 0 if none.
func (s *State) Errorno() int32 { return s.errorno.Load() }

// setErrorno is called exactly once by the owning worker as it exits.
func (s *State) setErrorno(code int32) { s.errorno.Store(code) }

// setFinished is called exactly once by the owning worker as it exits.
func (s *State) setFinished() { s.finished.Store(true) }
