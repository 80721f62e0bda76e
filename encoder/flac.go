package encoder

import (
	"errors"
	"fmt"
	"sync"

	"github.com/drgolem/go-flac/flac"
)

const bitsPerSample = 16

// FLAC streams 16-bit PCM through libFLAC's stream encoder via
// github.com/drgolem/go-flac, the same write-callback-into-mutex-guarded-
// buffer design as original_source/src/encoder/flac.cpp's libFLAC++ stream
// encoder. Encode repacks little-endian interleaved 16-bit samples into the
// int32 samples ProcessInterleaved expects; Drain empties the buffer the
// write callback appended to.
type FLAC struct {
	enc      *flac.FlacEncoder
	channels int

	mu      sync.Mutex
	flushed bool

	sampleRate int
	level      int
}

// NewFLAC builds a streaming FLAC encoder at the given compression level
// (0-8), sample rate, and channel count. Verification is left disabled
// (drgolem's FlacEncoder never enables it in stream mode) for performance,
// matching the original's set_verify(false).
func NewFLAC(level, sampleRate, channels int) (*FLAC, error) {
	enc, err := flac.NewFlacEncoder(sampleRate, channels, bitsPerSample)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", encoderInitErr, err)
	}
	if err := enc.SetCompressionLevel(level); err != nil {
		enc.Close()
		return nil, fmt.Errorf("%w: %v", encoderInitErr, err)
	}
	if err := enc.InitStream(); err != nil {
		enc.Close()
		return nil, fmt.Errorf("%w: %v", encoderInitErr, err)
	}
	return &FLAC{enc: enc, channels: channels, sampleRate: sampleRate, level: level}, nil
}

func (f *FLAC) ContentType() string {
	return fmt.Sprintf("audio/x-flac;bit=16;rate=%d;channels=%d", f.sampleRate, f.channels)
}

// Encode repacks interleaved little-endian 16-bit PCM into int32 samples
// and feeds them to the stream encoder frame-by-frame (a "frame" here is
// one sample per channel, matching process_interleaved's numSamples unit).
func (f *FLAC) Encode(pcm []byte) error {
	frameSize := 2 * f.channels
	if len(pcm)%frameSize != 0 {
		return &ErrNotMultiple{Len: len(pcm), Channels: f.channels}
	}
	if len(pcm) == 0 {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flushed {
		return fmt.Errorf("%w: encode called after flush", encoderProcessErr)
	}

	numSamples := len(pcm) / 2
	samples := make([]int32, numSamples)
	n := flac.PCMToInt32(pcm, bitsPerSample, samples)
	numFrames := n / f.channels
	if numFrames == 0 {
		return nil
	}
	if err := f.enc.ProcessInterleaved(samples, numFrames); err != nil {
		return fmt.Errorf("%w: %v", encoderProcessErr, err)
	}
	return nil
}

// Flush finalizes the FLAC stream, emitting the trailing frame and
// metadata updates into the write-callback buffer so a final Drain can
// retrieve them.
func (f *FLAC) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flushed {
		return nil
	}
	f.flushed = true
	if err := f.enc.Finish(); err != nil {
		return fmt.Errorf("%w: %v", encoderProcessErr, err)
	}
	return nil
}

func (f *FLAC) Drain() []byte {
	return f.enc.TakeBytes()
}

func (f *FLAC) Close() {
	f.enc.Close()
}

// encoderInitErr and encoderProcessErr are sentinel wrapping targets that
// IsInitError and IsProcessError test for, so a caller can classify a
// returned error as 501 vs 502 without access to the sentinels themselves.
var (
	encoderInitErr    = fmt.Errorf("encoder init")
	encoderProcessErr = fmt.Errorf("encoder process")
)

// IsInitError reports whether err originated from FLAC encoder
// construction/configuration (maps to ErrorCode 501).
func IsInitError(err error) bool { return errors.Is(err, encoderInitErr) }

// IsProcessError reports whether err originated from FLAC frame
// processing (maps to ErrorCode 502).
func IsProcessError(err error) bool { return errors.Is(err, encoderProcessErr) }
