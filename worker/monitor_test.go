package worker

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/fairydevices/go-mimiio/mlog"
)

func TestMonitorPropagatesFirstError(t *testing.T) {
	var tx, rx State
	var firstError atomic.Int32
	m := NewMonitor(&tx, &rx, &firstError)

	go func() {
		time.Sleep(20 * time.Millisecond)
		rx.setErrorno(1009)
	}()

	done := make(chan struct{})
	go func() { m.Run(mlog.Default()); close(done) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not exit after error propagation")
	}

	if firstError.Load() != 1009 {
		t.Fatalf("firstError = %d, want 1009", firstError.Load())
	}
	if !tx.FinishRequested() {
		t.Fatal("expected monitor to request tx finish")
	}
	if !rx.FinishRequested() {
		t.Fatal("expected monitor to request rx finish")
	}
}

func TestMonitorFirstErrorWins(t *testing.T) {
	var tx, rx State
	var firstError atomic.Int32
	m := NewMonitor(&tx, &rx, &firstError)

	tx.setErrorno(501)
	rx.setErrorno(890)

	done := make(chan struct{})
	go func() { m.Run(mlog.Default()); close(done) }()
	<-done

	// Both errors are already set before the monitor's first poll; only
	// one may win the compare-and-swap, and it must be non-zero.
	if firstError.Load() == 0 {
		t.Fatal("expected a non-zero first error")
	}
}

func TestMonitorExitsWhenBothWorkersFinish(t *testing.T) {
	var tx, rx State
	var firstError atomic.Int32
	tx.setFinished()
	rx.setFinished()
	m := NewMonitor(&tx, &rx, &firstError)

	done := make(chan struct{})
	go func() { m.Run(mlog.Default()); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor should exit immediately when both workers are already finished")
	}
}
