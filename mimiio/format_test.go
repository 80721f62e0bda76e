package mimiio

import "testing"

func TestFlacLevelRoundTrip(t *testing.T) {
	for lvl := 0; lvl <= 8; lvl++ {
		f := AudioFormat(int(Flac0) + lvl)
		if !f.IsFlac() {
			t.Fatalf("format for level %d should report IsFlac", lvl)
		}
		if got := f.FlacLevel(); got != lvl {
			t.Fatalf("FlacLevel() = %d, want %d", got, lvl)
		}
	}
}

func TestNonFlacFormatsReportNoLevel(t *testing.T) {
	if RawPCM.FlacLevel() != -1 {
		t.Fatalf("RawPCM.FlacLevel() = %d, want -1", RawPCM.FlacLevel())
	}
	if FlacPassThrough.FlacLevel() != -1 {
		t.Fatalf("FlacPassThrough.FlacLevel() = %d, want -1", FlacPassThrough.FlacLevel())
	}
	if RawPCM.IsFlac() || FlacPassThrough.IsFlac() {
		t.Fatal("RawPCM and FlacPassThrough must not report IsFlac")
	}
}
