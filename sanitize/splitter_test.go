package sanitize

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkReader delivers its chunks one Read call at a time, simulating
// arbitrary network granularity.
type chunkReader struct {
	chunks []string
	err    error
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		if c.err != nil {
			return 0, c.err
		}
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	if n < len(c.chunks[0]) {
		c.chunks[0] = c.chunks[0][n:]
	} else {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func collectFrames(t *testing.T, r io.Reader, cfg Config) []string {
	t.Helper()
	cfg.ApplyDefaults()
	s, err := newSplitter(r, cfg)
	if err != nil {
		t.Fatalf("newSplitter() error: %v", err)
	}
	var frames []string
	for {
		f, ok, err := s.next()
		if err != nil {
			t.Fatalf("next() error: %v", err)
		}
		if !ok {
			return frames
		}
		frames = append(frames, f)
	}
}

func TestSplitter_ChunkBoundaryInvariance(t *testing.T) {
	input := "data: one\ndata: two\r\nignored\ndata: three"

	// Every possible split point must yield the same frames as one chunk.
	want := collectFrames(t, strings.NewReader(input), Config{IntroValue: "data:"})
	for cut := 1; cut < len(input); cut++ {
		r := &chunkReader{chunks: []string{input[:cut], input[cut:]}}
		got := collectFrames(t, r, Config{IntroValue: "data:"})
		if len(got) != len(want) {
			t.Fatalf("cut %d: got %d frames, want %d", cut, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("cut %d: frame %d = %q, want %q", cut, i, got[i], want[i])
			}
		}
	}
}

func TestSplitter_NoIntro(t *testing.T) {
	frames := collectFrames(t, strings.NewReader("alpha\n\nbeta\r\ngamma"), Config{})
	want := []string{"alpha", "", "beta", "gamma"}
	if len(frames) != len(want) {
		t.Fatalf("got %v, want %v", frames, want)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame %d = %q, want %q", i, frames[i], want[i])
		}
	}
}

func TestSplitter_IntroFiltersAndStrips(t *testing.T) {
	input := "event: message\ndata: {\"a\":1}\n  data: indented\nnoise\n"
	frames := collectFrames(t, strings.NewReader(input), Config{IntroValue: "data:"})
	want := []string{`{"a":1}`, "indented"}
	if len(frames) != len(want) {
		t.Fatalf("got %v, want %v", frames, want)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame %d = %q, want %q", i, frames[i], want[i])
		}
	}
}

func TestSplitter_FlushesFinalPartialLine(t *testing.T) {
	frames := collectFrames(t, strings.NewReader("complete\npartial"), Config{})
	if len(frames) != 2 || frames[1] != "partial" {
		t.Fatalf("got %v, want final partial line flushed", frames)
	}
}

func TestSplitter_InvalidUTF8Replaced(t *testing.T) {
	frames := collectFrames(t, strings.NewReader("ok \xff\xfe bytes\n"), Config{})
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if !strings.Contains(frames[0], "�") {
		t.Errorf("frame %q: undecodable bytes should be replaced, not dropped", frames[0])
	}
	if !strings.Contains(frames[0], "bytes") {
		t.Errorf("frame %q: valid bytes around noise must survive", frames[0])
	}
}

func TestSplitter_TransportErrorAfterBufferedLines(t *testing.T) {
	cause := errors.New("connection reset")
	r := &chunkReader{chunks: []string{"first\nsecond\n"}, err: cause}

	s, err := newSplitter(r, Config{Encoding: DefaultEncoding, BufferSize: DefaultBufferSize})
	if err != nil {
		t.Fatalf("newSplitter() error: %v", err)
	}
	for _, want := range []string{"first", "second"} {
		f, ok, err := s.next()
		if err != nil || !ok {
			t.Fatalf("next() = %q, %v, %v; want buffered line first", f, ok, err)
		}
		if f != want {
			t.Errorf("next() = %q, want %q", f, want)
		}
	}
	if _, _, err := s.next(); !errors.Is(err, cause) {
		t.Errorf("next() error = %v, want %v", err, cause)
	}
}

func TestResolveEncoding(t *testing.T) {
	tests := []struct {
		name    string
		wantNil bool
		wantErr bool
	}{
		{name: "utf-8", wantNil: true},
		{name: "UTF-8", wantNil: true},
		{name: "", wantNil: true},
		{name: "ISO-8859-1"},
		{name: "windows-1252"},
		{name: "no-such-charset", wantErr: true},
	}
	for _, tt := range tests {
		dec, err := resolveEncoding(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("resolveEncoding(%q): expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("resolveEncoding(%q) error: %v", tt.name, err)
			continue
		}
		if (dec == nil) != tt.wantNil {
			t.Errorf("resolveEncoding(%q) nil=%v, want %v", tt.name, dec == nil, tt.wantNil)
		}
	}
}
