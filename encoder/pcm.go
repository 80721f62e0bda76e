package encoder

import (
	"fmt"
	"sync"
)

// PCM is the identity encoder: it forwards little-endian 16-bit PCM
// verbatim. Grounded on original_source/src/encoder/pcm.hpp, whose
// Encode() is a plain append and whose Flush() does nothing.
type PCM struct {
	mu         sync.Mutex
	buf        []byte
	sampleRate int
	channels   int
}

// NewPCM builds a pass-through PCM encoder for the given sample rate and
// channel count; these only affect ContentType, not Encode's behavior.
func NewPCM(sampleRate, channels int) *PCM {
	return &PCM{sampleRate: sampleRate, channels: channels}
}

func (p *PCM) ContentType() string {
	return fmt.Sprintf("audio/x-pcm;bit=16;rate=%d;channels=%d", p.sampleRate, p.channels)
}

func (p *PCM) Encode(pcm []byte) error {
	if len(pcm)%(2*p.channels) != 0 {
		return &ErrNotMultiple{Len: len(pcm), Channels: p.channels}
	}
	p.mu.Lock()
	p.buf = append(p.buf, pcm...)
	p.mu.Unlock()
	return nil
}

func (p *PCM) Flush() error { return nil }

func (p *PCM) Drain() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.buf) == 0 {
		return nil
	}
	out := p.buf
	p.buf = nil
	return out
}

func (p *PCM) Close() {}
