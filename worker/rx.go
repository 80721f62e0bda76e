package worker

import (
	"sync/atomic"
	"time"

	"github.com/fairydevices/go-mimiio/mlog"
	"github.com/fairydevices/go-mimiio/wsconn"
)

// RxFunc is the Go-idiomatic equivalent of the C ABI's rx callback:
// invoked once per received text or binary payload. isText distinguishes
// NUL-termination semantics the C ABI promises text callers; Go callers
// get the raw body either way. A non-zero return is treated as a
// user-defined worker error.
type RxFunc func(payload []byte, isText bool) (err int32)

// Rx is the receive worker: a blocking loop against Conn.RecvFrame that
// dispatches text/binary payloads to the user sink and classifies close
// frames, pings, and protocol errors per
// original_source/src/worker/mimiioRxWorker.cpp.
type Rx struct {
	State

	conn *wsconn.Conn
	rx   RxFunc
	log  *mlog.Logger

	// framesRecv counts text and binary payloads successfully handed to
	// the user sink, read by Session.Stats via FramesRecv.
	framesRecv atomic.Int64
}

func NewRx(conn *wsconn.Conn, rx RxFunc, log *mlog.Logger) *Rx {
	return &Rx{conn: conn, rx: rx, log: log}
}

// FramesRecv returns the number of text/binary payloads delivered to the
// user sink so far.
func (r *Rx) FramesRecv() int64 { return r.framesRecv.Load() }

// Run executes the receive loop until finish is requested, a close frame
// terminates it, or an error occurs. Meant to run as its own goroutine.
func (r *Rx) Run() {
	defer r.setFinished()

	for {
		if r.FinishRequested() {
			r.log.Debug("rx: finish requested, exiting")
			return
		}
		if r.conn.IsClosed() {
			r.log.Debug("rx: connection already closed, exiting normally")
			return
		}

		frame, err := r.conn.RecvFrame()
		if err != nil {
			r.setErrorno(errnoFromSendErr(err))
			r.log.Error("rx: recv error: %v", err)
			return
		}

		switch frame.Kind {
		case wsconn.KindPing:
			// gorilla answers pings at the transport layer before
			// RecvFrame ever sees them; this branch exists for parity
			// with the original loop and for any future transport that
			// surfaces pings explicitly.
			continue

		case wsconn.KindClose:
			if frame.Status == 0 {
				r.setErrorno(904)
				r.log.Warn("rx: close frame received without status (904)")
				return
			}
			if frame.Status == 1000 {
				r.log.Debug("rx: close frame status 1000, exiting normally")
				return
			}
			r.setErrorno(int32(frame.Status))
			r.log.Warn("rx: close frame status %d, terminating", frame.Status)
			return

		case wsconn.KindText:
			if len(frame.Body) == 0 {
				r.setErrorno(906)
				r.log.Warn("rx: empty text frame (906)")
				return
			}
			if rxErr := r.rx(frame.Body, true); rxErr != 0 {
				r.setErrorno(rxErr)
				r.log.Error("rx: user sink reported error %d", rxErr)
				return
			}
			r.framesRecv.Add(1)

		case wsconn.KindBinary:
			if len(frame.Body) == 0 {
				r.setErrorno(907)
				r.log.Warn("rx: empty binary frame (907)")
				return
			}
			if rxErr := r.rx(frame.Body, false); rxErr != 0 {
				r.setErrorno(rxErr)
				r.log.Error("rx: user sink reported error %d", rxErr)
				return
			}
			r.framesRecv.Add(1)

		case wsconn.KindPeerGone:
			r.setErrorno(791)
			r.log.Error("rx: unexpected network disconnection (791)")
			return

		case wsconn.KindUnknown:
			r.setErrorno(890)
			r.log.Error("rx: unknown frame flags received (890)")
			return
		}

		time.Sleep(time.Millisecond)
	}
}
