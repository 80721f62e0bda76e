package encoder

import (
	"bytes"
	"testing"
)

func TestFLACPassThroughContentType(t *testing.T) {
	f := NewFLACPassThrough(44100, 2)
	want := "audio/x-flac;bit=16;rate=44100;channels=2"
	if got := f.ContentType(); got != want {
		t.Fatalf("ContentType() = %q, want %q", got, want)
	}
}

func TestFLACPassThroughIsVerbatim(t *testing.T) {
	f := NewFLACPassThrough(44100, 2)
	payload := []byte{0xff, 0xf8, 0x00, 0x01, 0x02}
	if err := f.Encode(payload); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := f.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	got := f.Drain()
	if !bytes.Equal(got, payload) {
		t.Fatalf("Drain() = %x, want verbatim %x", got, payload)
	}
}
