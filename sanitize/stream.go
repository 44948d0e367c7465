package sanitize

import (
	"context"
	"io"
	"strings"
)

// Stream is the composed normalization pipeline over one upstream response
// body. It is pull-based and single-use: each call to Next advances the
// pipeline by exactly as much input as one content delta requires.
//
// Stream satisfies provider.Iterator[Chunk].
type Stream struct {
	split *splitter
	dec   *decoder
	ext   *extractor
	src   io.Reader
	done  bool
}

// New builds a Stream over r with the given configuration. Configuration
// problems (malformed patterns, unknown encodings) fail here; data
// problems never fail the constructed stream.
func New(r io.Reader, cfg Config) (*Stream, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	split, err := newSplitter(r, cfg)
	if err != nil {
		return nil, err
	}
	return &Stream{
		split: split,
		dec:   newDecoder(cfg),
		ext:   newExtractor(cfg),
		src:   r,
	}, nil
}

// FromString builds a Stream over an already-buffered response body.
// Used by vendors whose non-streaming endpoints return one JSON document.
func FromString(body string, cfg Config) (*Stream, error) {
	return New(strings.NewReader(body), cfg)
}

// Next returns the next content delta. ok=false with a nil error means the
// stream is exhausted (source closed or a skip marker reached). A non-nil
// error is a transport failure from the underlying reader; content decoded
// before the failure has already been yielded.
func (s *Stream) Next(ctx context.Context) (Chunk, bool, error) {
	if s.done {
		return Chunk{}, false, nil
	}
	for {
		if err := ctx.Err(); err != nil {
			s.done = true
			return Chunk{}, false, err
		}

		text, ok, err := s.split.next()
		if err != nil {
			s.done = true
			return Chunk{}, false, err
		}
		if !ok {
			s.done = true
			return Chunk{}, false, nil
		}

		frame, action := s.dec.decode(text)
		switch action {
		case frameTerminate:
			s.done = true
			return Chunk{}, false, nil
		case frameDrop:
			continue
		}

		if chunk, ok := s.ext.apply(frame); ok {
			return chunk, true, nil
		}
	}
}

// Text drains the stream and joins every yielded delta into one string,
// ignoring the reasoning channel. On transport failure the text
// accumulated so far is returned alongside the error.
func (s *Stream) Text(ctx context.Context) (string, error) {
	var b strings.Builder
	for {
		chunk, ok, err := s.Next(ctx)
		if err != nil {
			return b.String(), err
		}
		if !ok {
			return b.String(), nil
		}
		b.WriteString(chunk.Text)
	}
}

// Close releases the underlying response body when it is closeable. The
// pipeline itself holds no other resources.
func (s *Stream) Close() error {
	s.done = true
	if c, ok := s.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
