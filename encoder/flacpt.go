package encoder

import (
	"fmt"
	"sync"
)

// FLACPassThrough is used when the caller's tx callback already produces
// FLAC-encoded bytes; Encode is a verbatim append and Flush is a no-op,
// matching original_source/src/encoder/flacPT.hpp. Its ContentType is
// identical in shape to the streaming FLAC encoder's, since from the wire's
// perspective the two are indistinguishable.
type FLACPassThrough struct {
	mu         sync.Mutex
	buf        []byte
	sampleRate int
	channels   int
}

func NewFLACPassThrough(sampleRate, channels int) *FLACPassThrough {
	return &FLACPassThrough{sampleRate: sampleRate, channels: channels}
}

func (f *FLACPassThrough) ContentType() string {
	return fmt.Sprintf("audio/x-flac;bit=16;rate=%d;channels=%d", f.sampleRate, f.channels)
}

func (f *FLACPassThrough) Encode(pcm []byte) error {
	f.mu.Lock()
	f.buf = append(f.buf, pcm...)
	f.mu.Unlock()
	return nil
}

func (f *FLACPassThrough) Flush() error { return nil }

func (f *FLACPassThrough) Drain() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.buf) == 0 {
		return nil
	}
	out := f.buf
	f.buf = nil
	return out
}

func (f *FLACPassThrough) Close() {}
