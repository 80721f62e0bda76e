package worker

import (
	"sync/atomic"
	"time"

	"github.com/fairydevices/go-mimiio/encoder"
	"github.com/fairydevices/go-mimiio/mlog"
	"github.com/fairydevices/go-mimiio/wsconn"
)

// MaxSendBufferSize is the fixed scratch-buffer size the transmit worker
// offers the tx callback each iteration; a callback that reports a larger
// length is a fatal policy breach (errorno 903). Matches
// maximum_send_buffer_size_ in original_source/src/worker/mimiioTxWorker.cpp.
const MaxSendBufferSize = 262144

// TxFunc is the Go-idiomatic equivalent of the C ABI's tx callback: it is
// offered a scratch buffer of MaxSendBufferSize bytes to fill, and reports
// back how many bytes it wrote, whether the caller wants to end the
// stream (recogBreak), and any user-defined error (a negative errno,
// copied straight into the worker's errorno on exit).
type TxFunc func(buf []byte) (n int, recogBreak bool, err int32)

// Tx is the transmit worker: it pulls PCM from the user source, feeds the
// encoder, and sends binary frames, finishing with the terminating
// recog-break text command. One loop iteration is one potential send.
type Tx struct {
	State

	conn    *wsconn.Conn
	enc     encoder.Encoder
	tx      TxFunc
	log     *mlog.Logger
	scratch []byte

	// recogBreakSent records whether the terminating command frame has
	// been sent, for the session façade's invariant #5 (exactly one
	// recog-break per session).
	recogBreakSent bool

	// framesSent counts binary frames actually written to the wire, read
	// by Session.Stats via FramesSent.
	framesSent atomic.Int64
}

// FramesSent returns the number of binary frames sent so far.
func (t *Tx) FramesSent() int64 { return t.framesSent.Load() }

// NewTx builds a transmit worker around the given connection, encoder, and
// user callback.
func NewTx(conn *wsconn.Conn, enc encoder.Encoder, tx TxFunc, log *mlog.Logger) *Tx {
	return &Tx{
		conn:    conn,
		enc:     enc,
		tx:      tx,
		log:     log,
		scratch: make([]byte, MaxSendBufferSize),
	}
}

// RecogBreakSent reports whether the recog-break command frame was sent.
func (t *Tx) RecogBreakSent() bool { return t.recogBreakSent }

// Run executes the transmit loop until finish is requested, the stream
// ends normally, or an error terminates it. It is meant to be launched as
// its own goroutine by the session façade.
func (t *Tx) Run() {
	defer t.setFinished()

	for {
		if t.FinishRequested() {
			t.log.Debug("tx: finish requested, exiting")
			return
		}
		if t.conn.IsClosed() {
			t.log.Debug("tx: connection already closed, exiting normally")
			return
		}

		n, recogBreak, txErr := t.tx(t.scratch)

		if txErr != 0 {
			t.log.Error("tx: user callback reported error %d", txErr)
			t.sendRecogBreakBestEffort()
			t.setErrorno(txErr)
			return
		}

		if n > MaxSendBufferSize {
			t.log.Error("tx: callback wrote %d bytes, exceeding max %d", n, MaxSendBufferSize)
			t.setErrorno(int32(903))
			return
		}

		if n == 0 && !recogBreak {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		if n > 0 {
			if err := t.enc.Encode(t.scratch[:n]); err != nil {
				t.log.Error("tx: encoder error: %v", err)
				t.setErrorno(int32(502))
				return
			}
		}

		if recogBreak {
			if err := t.enc.Flush(); err != nil {
				t.log.Error("tx: encoder flush error: %v", err)
				t.setErrorno(int32(502))
				return
			}
			if out := t.enc.Drain(); len(out) > 0 {
				if err := t.conn.SendBinary(out); err != nil {
					t.log.Error("tx: send error: %v", err)
				} else {
					t.framesSent.Add(1)
				}
			}
			t.sendRecogBreak()
			return
		}

		out := t.enc.Drain()
		if len(out) == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		if err := t.conn.SendBinary(out); err != nil {
			t.log.Error("tx: send error: %v", err)
			t.setErrorno(errnoFromSendErr(err))
			return
		}
		t.framesSent.Add(1)
	}
}

func (t *Tx) sendRecogBreak() {
	if t.recogBreakSent {
		return
	}
	if err := t.conn.SendText(`{"command":"recog-break"}`); err != nil {
		t.log.Error("tx: failed sending recog-break: %v", err)
		return
	}
	t.recogBreakSent = true
	t.log.Debug("tx: recog-break sent, exiting normally")
}

// sendRecogBreakBestEffort is used on the tx-callback-error path: the
// original always attempts send_break() even though the connection may
// already be in a bad state, logging but not escalating a failure here.
func (t *Tx) sendRecogBreakBestEffort() {
	if t.recogBreakSent {
		return
	}
	if err := t.conn.SendText(`{"command":"recog-break"}`); err == nil {
		t.recogBreakSent = true
	}
}

func errnoFromSendErr(err error) int32 {
	if de, ok := err.(*wsconn.DialError); ok {
		return int32(de.Code)
	}
	return 799
}
