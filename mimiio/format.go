package mimiio

import "fmt"

// AudioFormat selects which Encoder variant a Session builds and determines
// the X-Mimi-Content-Type header sent during the WebSocket handshake.
type AudioFormat int

const (
	// RawPCM sends little-endian 16-bit PCM verbatim, no encoding.
	RawPCM AudioFormat = iota
	// Flac0 through Flac8 stream-encode PCM to FLAC at the given libFLAC
	// compression level (0 fastest, 8 smallest).
	Flac0
	Flac1
	Flac2
	Flac3
	Flac4
	Flac5
	Flac6
	Flac7
	Flac8
	// FlacPassThrough expects the caller's tx callback to already produce
	// FLAC-encoded bytes; the encoder only buffers and forwards them.
	FlacPassThrough
)

// FlacLevel reports the libFLAC compression level for a Flac* format, or
// -1 if f is not one of the Flac0..Flac8 variants.
func (f AudioFormat) FlacLevel() int {
	if f >= Flac0 && f <= Flac8 {
		return int(f - Flac0)
	}
	return -1
}

// IsFlac reports whether f is one of the streaming FLAC variants (not
// pass-through, not raw PCM).
func (f AudioFormat) IsFlac() bool {
	return f >= Flac0 && f <= Flac8
}

// String names the format for logging; it intentionally does not match
// ContentType, which is the wire-facing representation.
func (f AudioFormat) String() string {
	switch {
	case f == RawPCM:
		return "raw-pcm"
	case f.IsFlac():
		return fmt.Sprintf("flac-%d", f.FlacLevel())
	case f == FlacPassThrough:
		return "flac-passthrough"
	default:
		return "unknown"
	}
}
