package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

// extractor applies the content-derivation rules to a decoded frame in
// fixed precedence order: skip rules, extract rules, the pluggable
// Extractor, then pass-through.
type extractor struct {
	skip    []*regexp.Regexp
	extract []*regexp.Regexp
	fn      Extractor
}

func newExtractor(cfg Config) *extractor {
	skip, extract := cfg.compile()
	return &extractor{skip: skip, extract: extract, fn: cfg.Extractor}
}

func (e *extractor) apply(f Frame) (Chunk, bool) {
	// Skip rules win over everything else, letting callers suppress
	// wrapper tags and reasoning-block markers before content logic runs.
	for _, re := range e.skip {
		if re.MatchString(f.Text) {
			return Chunk{}, false
		}
	}

	if len(e.extract) > 0 {
		for _, re := range e.extract {
			if m := re.FindStringSubmatch(f.Text); m != nil {
				return Chunk{Text: decodeEscapes(m[1])}, true
			}
		}
		return Chunk{}, false
	}

	if e.fn != nil {
		c, ok := e.fn.Extract(f)
		if !ok || c.Empty() {
			return Chunk{}, false
		}
		return c, true
	}

	// No extraction rule at all: a string frame is its own content; JSON
	// scalars that decoded to a string count too. There is no well-defined
	// way to flatten an arbitrary structured value, so those are dropped.
	if f.JSON != nil {
		if s, ok := f.JSON.(string); ok && s != "" {
			return Chunk{Text: s}, true
		}
		return Chunk{}, false
	}
	if f.Text == "" {
		return Chunk{}, false
	}
	return Chunk{Text: f.Text}, true
}

// decodeEscapes interprets backslash escape sequences (\n, \t, \",
// \uXXXX, surrogate pairs) in regex-captured text. Unrecognized or
// malformed escapes pass through unchanged.
func decodeEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			i++
			continue
		}
		switch n := s[i+1]; n {
		case 'n':
			b.WriteByte('\n')
			i += 2
		case 't':
			b.WriteByte('\t')
			i += 2
		case 'r':
			b.WriteByte('\r')
			i += 2
		case '"', '\\', '/', '\'':
			b.WriteByte(n)
			i += 2
		case 'u':
			r, size, ok := decodeUnicodeEscape(s[i:])
			if !ok {
				b.WriteByte(c)
				i++
				continue
			}
			b.WriteRune(r)
			i += size
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// decodeUnicodeEscape parses a \uXXXX sequence at the start of s,
// combining UTF-16 surrogate pairs when both halves are present.
func decodeUnicodeEscape(s string) (r rune, size int, ok bool) {
	hi, ok := hex4(s)
	if !ok {
		return 0, 0, false
	}
	if utf16.IsSurrogate(hi) && len(s) >= 12 && s[6] == '\\' && s[7] == 'u' {
		if lo, ok := hex4(s[6:]); ok {
			if combined := utf16.DecodeRune(hi, lo); combined != 0xFFFD {
				return combined, 12, true
			}
		}
	}
	if utf16.IsSurrogate(hi) {
		return 0xFFFD, 6, true
	}
	return hi, 6, true
}

// hex4 parses the four hex digits of a \uXXXX sequence.
func hex4(s string) (rune, bool) {
	if len(s) < 6 {
		return 0, false
	}
	var r rune
	for _, c := range s[2:6] {
		var d rune
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, false
		}
		r = r<<4 | d
	}
	return r, true
}
