// Package wsconn implements the WebSocket frame layer specialized for the
// mimi(R) protocol on top of github.com/gorilla/websocket: the opening
// handshake (with bearer token, extra headers, and the content-type
// header), framed send/recv with ping/pong and close-code exchange, TLS,
// and proxy wiring. Grounded on
// _examples/square-key-labs-strawgo-ai/src/services/deepgram/stt.go (dial +
// header + write-mutex idiom) and on original_source/src/mimiioImpl.cpp
// (frame classification rules).
package wsconn

// Kind tags the variant carried by a Frame, mirroring the tagged union
// described for the receive path: text/binary payloads, ping (already
// answered with a pong by the time it's surfaced), a close frame with its
// status code, an unrecognized flag combination, or an unexpected peer
// disconnection.
type Kind int

const (
	KindText Kind = iota
	KindBinary
	KindPing
	KindPong
	KindClose
	KindUnknown
	KindPeerGone
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	case KindPing:
		return "ping"
	case KindPong:
		return "pong"
	case KindClose:
		return "close"
	case KindUnknown:
		return "unknown"
	case KindPeerGone:
		return "peer-gone"
	default:
		return "invalid"
	}
}

// Frame is the internal representation yielded by Conn.RecvFrame.
type Frame struct {
	Kind   Kind
	Body   []byte
	Status uint16 // only meaningful when Kind == KindClose
}
