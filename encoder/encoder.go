// Package encoder implements the streaming audio encoder pipeline that sits
// between the transmit worker and the WebSocket connection: raw little-
// endian 16-bit PCM in, wire-format bytes out. Three variants share one
// interface: pass-through PCM, streaming FLAC (via the cgo libFLAC binding
// in drgolem/go-flac), and pass-through FLAC for callers who already
// produce FLAC bytes themselves.
package encoder

import "fmt"

// Encoder is implemented by every wire-format variant. Encode turns pcm
// (or, for the FLAC pass-through variant, already-encoded bytes) into
// output bytes held in an internal buffer; Drain atomically empties that
// buffer; Flush finalizes any
// buffered-but-not-yet-emitted state (only meaningful for streaming FLAC).
//
// Encode after Flush is undefined; callers must not reuse an Encoder past
// its Flush call.
type Encoder interface {
	// ContentType is the value sent as the X-Mimi-Content-Type header
	// during the WebSocket handshake.
	ContentType() string
	// Encode submits pcm bytes for encoding. For the raw PCM and FLAC
	// pass-through variants this is a verbatim append; for streaming FLAC
	// it repacks 16-bit interleaved samples and feeds the libFLAC stream
	// encoder.
	Encode(pcm []byte) error
	// Flush finalizes any pending encoder state so all remaining bytes
	// become available via Drain. A no-op for PCM and FLAC pass-through.
	Flush() error
	// Drain returns and clears the internal output buffer.
	Drain() []byte
	// Close releases any underlying resources (cgo handles for FLAC).
	Close()
}

// ErrNotMultiple is returned by Encode when the input length is not a
// multiple of 2*channels, the frame size for 16-bit interleaved PCM.
type ErrNotMultiple struct {
	Len      int
	Channels int
}

func (e *ErrNotMultiple) Error() string {
	return fmt.Sprintf("encoder: input length %d is not a multiple of %d (2 bytes * %d channels)", e.Len, 2*e.Channels, e.Channels)
}

// New constructs the Encoder for the given sample rate, channel count, and
// FLAC compression level (0-8); level is ignored unless flac is true.
func New(flac bool, passThrough bool, level, sampleRate, channels int) (Encoder, error) {
	switch {
	case passThrough:
		return NewFLACPassThrough(sampleRate, channels), nil
	case flac:
		return NewFLAC(level, sampleRate, channels)
	default:
		return NewPCM(sampleRate, channels), nil
	}
}
