package sanitize

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// splitter turns a stream of arbitrarily sized chunks into logical frames.
//
// Incoming pieces are appended to an internal buffer and complete lines
// are extracted as they form, so a logical line may span many reads and a
// single read may carry many lines. A trailing partial line is flushed as
// a final frame once the source is exhausted.
type splitter struct {
	r       io.Reader
	intro   string
	buf     []byte
	readBuf []byte
	eof     bool
	readErr error
}

func newSplitter(r io.Reader, cfg Config) (*splitter, error) {
	dec, err := resolveEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	if dec != nil {
		r = transform.NewReader(r, dec)
	}
	return &splitter{
		r:       r,
		intro:   cfg.IntroValue,
		readBuf: make([]byte, cfg.BufferSize),
	}, nil
}

// next returns the next frame. ok=false means the source is exhausted.
// A transport error is returned only after every line received before the
// failure has been handed out.
func (s *splitter) next() (frame string, ok bool, err error) {
	for {
		line, lineOK := s.takeLine()
		if !lineOK {
			if err := s.fill(); err != nil {
				return "", false, err
			}
			if s.eof && len(s.buf) == 0 {
				if s.readErr != nil {
					return "", false, s.readErr
				}
				return "", false, nil
			}
			continue
		}

		if s.intro == "" {
			return line, true, nil
		}
		trimmed := strings.TrimLeft(line, " \t")
		if !strings.HasPrefix(trimmed, s.intro) {
			// Lines without the configured prefix are not frames.
			continue
		}
		return strings.TrimSpace(trimmed[len(s.intro):]), true, nil
	}
}

// takeLine extracts one complete line from the buffer, or the final
// partial line once the source has ended.
func (s *splitter) takeLine() (string, bool) {
	if i := bytes.IndexByte(s.buf, '\n'); i >= 0 {
		line := s.buf[:i]
		s.buf = s.buf[i+1:]
		return decodeLine(line), true
	}
	if s.eof && len(s.buf) > 0 {
		line := s.buf
		s.buf = nil
		return decodeLine(line), true
	}
	return "", false
}

// fill reads the next chunk into the buffer. Read errors are stashed so
// that already buffered lines drain first.
func (s *splitter) fill() error {
	if s.eof {
		return nil
	}
	n, err := s.r.Read(s.readBuf)
	if n > 0 {
		s.buf = append(s.buf, s.readBuf[:n]...)
	}
	if err != nil {
		s.eof = true
		if err != io.EOF {
			s.readErr = err
		}
	}
	return nil
}

// decodeLine strips a trailing \r and replaces undecodable bytes. The
// pipeline never aborts because of encoding noise.
func decodeLine(b []byte) string {
	b = bytes.TrimSuffix(b, []byte{'\r'})
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

// resolveEncoding maps an IANA charset name to a replacing decoder.
// Returns nil for UTF-8, which needs no transformation.
func resolveEncoding(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("sanitize: unsupported encoding %q", name)
	}
	return enc.NewDecoder(), nil
}
