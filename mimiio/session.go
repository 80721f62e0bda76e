package mimiio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/fairydevices/go-mimiio/encoder"
	"github.com/fairydevices/go-mimiio/mlog"
	"github.com/fairydevices/go-mimiio/worker"
	"github.com/fairydevices/go-mimiio/wsconn"
)

// TxFunc and RxFunc are the Go-idiomatic equivalents of the C ABI's
// callback signatures; see worker.TxFunc/worker.RxFunc for details.
type TxFunc = worker.TxFunc
type RxFunc = worker.RxFunc

// StreamState mirrors the five-state enumeration in spec.md §3, derived
// from the session's started flag and the two workers' finished flags.
type StreamState int

const (
	StateWait StreamState = iota
	StateClosed
	StateBoth
	StateSendOnly
	StateRecvOnly
)

func (s StreamState) String() string {
	switch s {
	case StateWait:
		return "wait"
	case StateClosed:
		return "closed"
	case StateBoth:
		return "both"
	case StateSendOnly:
		return "send-only"
	case StateRecvOnly:
		return "recv-only"
	default:
		return "invalid"
	}
}

// SessionStats is an additive, read-only snapshot of session activity; not
// part of the original C API, supplementing it the way the teacher's
// WebSocketOutputProcessor logs byte/frame counters, promoted here to a
// permanent queryable field instead of only a log line.
type SessionStats struct {
	FramesSent int64
	FramesRecv int64
}

// Session is the top-level handle returned by Open: it owns the WebSocket
// connection, the encoder, and the transmit/receive/monitor workers.
// Exactly one goroutine is expected to call its lifecycle methods
// (Start/Close); the workers only mutate shared atomic state.
type Session struct {
	id string

	conn *wsconn.Conn
	enc  encoder.Encoder

	tx  *worker.Tx
	rx  *worker.Rx
	mon *worker.Monitor

	log *mlog.Logger

	started    atomic.Bool
	firstError atomic.Int32

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// ID returns the session's UUID, assigned at Open and used only for log
// correlation; it is never sent over the wire.
func (s *Session) ID() string { return s.id }

// Open performs the WebSocket handshake, builds the negotiated encoder,
// and constructs (but does not start) the transmit/receive workers. On
// any failure it returns a nil *Session and an error carrying the
// appropriate 5xx/6xx/7xx/8xx/9xx code; the session is never returned in a
// half-initialized state, per spec.md §4.6.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	mlog.Init(cfg.LogLevel)

	if cfg.Tx == nil {
		return nil, ErrTxCallbackMissing
	}
	if cfg.Rx == nil {
		return nil, ErrRxCallbackMissing
	}

	id := uuid.NewString()
	log := mlog.Default().WithPrefix(id)

	enc, err := buildEncoder(cfg)
	if err != nil {
		log.Error("open: encoder construction failed: %v", err)
		return nil, ErrEncoderInit
	}

	wsCfg := wsconn.Config{
		Host:           cfg.Host,
		Port:           cfg.Port,
		UseTLS:         cfg.UseTLS,
		CABundlePath:   cfg.CABundlePath,
		Token:          cfg.Token,
		Headers:        cfg.Headers,
		ContentType:    enc.ContentType(),
		ConnectTimeout: cfg.ConnectTimeout,
		SendTimeout:    cfg.SendTimeout,
		RecvTimeout:    cfg.RecvTimeout,
	}

	conn, err := wsconn.Dial(ctx, wsCfg)
	if err != nil {
		enc.Close()
		log.Error("open: dial failed: %v", err)
		if de, ok := err.(*wsconn.DialError); ok {
			return nil, ErrorCode(de.Code)
		}
		return nil, ErrNetworkUndefined
	}

	s := &Session{id: id, conn: conn, enc: enc, log: log}
	s.tx = worker.NewTx(conn, enc, cfg.Tx, log.WithPrefix(id+":tx"))
	s.rx = worker.NewRx(conn, cfg.Rx, log.WithPrefix(id+":rx"))
	s.mon = worker.NewMonitor(&s.tx.State, &s.rx.State, &s.firstError)

	log.Info("open: session established (%s:%d, format=%s)", cfg.Host, cfg.Port, cfg.Format)
	return s, nil
}

func buildEncoder(cfg Config) (encoder.Encoder, error) {
	switch {
	case cfg.Format == RawPCM:
		return encoder.NewPCM(cfg.Rate, cfg.Channels), nil
	case cfg.Format == FlacPassThrough:
		return encoder.NewFLACPassThrough(cfg.Rate, cfg.Channels), nil
	case cfg.Format.IsFlac():
		return encoder.NewFLAC(cfg.Format.FlacLevel(), cfg.Rate, cfg.Channels)
	default:
		return nil, fmt.Errorf("mimiio: unrecognized audio format %v", cfg.Format)
	}
}

// Start launches the monitor, transmit, and receive goroutines and marks
// the session active. Re-invoking Start on an already-started session is
// undefined, matching spec.md §4.6.
func (s *Session) Start() error {
	if s.started.Swap(true) {
		return ErrCouldNotStart
	}

	s.wg.Add(3)
	go func() { defer s.wg.Done(); s.mon.Run(s.log) }()
	go func() { defer s.wg.Done(); s.tx.Run() }()
	go func() { defer s.wg.Done(); s.rx.Run() }()

	s.log.Info("start: session %s running", s.id)
	return nil
}

// IsActive reports true once Start has run and while at least one worker
// has not reported finished; it turns false only when both have finished.
func (s *Session) IsActive() bool {
	if !s.started.Load() {
		return false
	}
	return !(s.tx.Finished() && s.rx.Finished())
}

// StreamState computes the session's observable state from started and
// the two workers' finished flags, per spec.md §4.7.
func (s *Session) StreamState() StreamState {
	if !s.started.Load() {
		return StateWait
	}
	txDone, rxDone := s.tx.Finished(), s.rx.Finished()
	switch {
	case txDone && rxDone:
		return StateClosed
	case rxDone && !txDone:
		return StateSendOnly
	case txDone && !rxDone:
		return StateRecvOnly
	default:
		return StateBoth
	}
}

// Error returns the session's first-error slot; 0 means no error.
func (s *Session) Error() int32 { return s.firstError.Load() }

// Stats returns a snapshot of the frame counters the tx/rx workers
// increment at their send and sink call sites.
func (s *Session) Stats() SessionStats {
	return SessionStats{
		FramesSent: s.tx.FramesSent(),
		FramesRecv: s.rx.FramesRecv(),
	}
}

// Close signals all three workers to finish, joins them, closes the
// WebSocket, and releases the encoder. Idempotent: calling it on an
// already-closed session has no observable effect beyond returning,
// per invariant #7.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.log.Info("close: shutting down session %s", s.id)
		s.tx.RequestFinish()
		s.rx.RequestFinish()
		if s.mon != nil {
			s.mon.RequestFinish()
		}
		// Unblock a worker stuck in a blocking recv/send past its
		// timeout, per the cooperative-cancellation rule in §5.
		s.conn.Close()
		if s.started.Load() {
			s.wg.Wait()
		}
		s.enc.Close()
		s.log.Debug("close: session %s released", s.id)
	})
}
