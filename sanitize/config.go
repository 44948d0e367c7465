package sanitize

import (
	"fmt"
	"regexp"
)

// Default configuration values.
const (
	DefaultEncoding   = "utf-8"
	DefaultBufferSize = 8 * 1024
)

// Config controls how a Stream splits, decodes, and extracts content from
// a raw upstream response. A Config is immutable for the lifetime of one
// Stream; vendors build a fresh one per request.
type Config struct {
	// IntroValue is a literal prefix marking frame boundaries (e.g. "data:").
	// When set, only lines beginning with it (after trimming) become frames,
	// with the prefix stripped. When empty, every line is a frame verbatim.
	IntroValue string

	// ToJSON parses each frame as JSON before extraction.
	ToJSON bool

	// RepairJSON enables a jsonrepair pass when a frame fails strict JSON
	// parsing, before the frame is dropped or passed through raw. Only
	// meaningful with ToJSON.
	RepairJSON bool

	// Extractor derives content from a decoded frame. Runs after skip and
	// extract rules. Must be a pure mapping; return ok=false for frames
	// that carry no content.
	Extractor Extractor

	// ExtractRegexes are applied in order to the frame's raw text; the
	// first pattern that matches contributes its first capture group as
	// content, with escape sequences (\n, \uXXXX, ...) decoded.
	ExtractRegexes []string

	// SkipRegexes drop a matching frame unconditionally, before any
	// extraction logic runs.
	SkipRegexes []string

	// SkipMarkers are literal sentinels (e.g. "[DONE]") that terminate the
	// whole stream when a frame's trimmed text equals one of them.
	SkipMarkers []string

	// YieldRawOnError passes a frame that fails JSON decoding through
	// verbatim instead of silently dropping it.
	YieldRawOnError bool

	// Encoding is the IANA character set of the upstream bytes. Undecodable
	// bytes are replaced, never raised. Defaults to utf-8.
	Encoding string

	// BufferSize is the read buffer size in bytes.
	BufferSize int
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.Encoding == "" {
		c.Encoding = DefaultEncoding
	}
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBufferSize
	}
}

// Validate checks the configuration. Malformed patterns are programmer
// errors and fail here, at construction, rather than mid-stream.
func (c *Config) Validate() error {
	for _, p := range c.SkipRegexes {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("sanitize: invalid skip regex %q: %w", p, err)
		}
	}
	for _, p := range c.ExtractRegexes {
		re, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("sanitize: invalid extract regex %q: %w", p, err)
		}
		if re.NumSubexp() < 1 {
			return fmt.Errorf("sanitize: extract regex %q has no capture group", p)
		}
	}
	if c.RepairJSON && !c.ToJSON {
		return fmt.Errorf("sanitize: RepairJSON requires ToJSON")
	}
	return nil
}

// compile turns the pattern lists into matchers. Call after Validate.
func (c *Config) compile() (skip, extract []*regexp.Regexp) {
	for _, p := range c.SkipRegexes {
		skip = append(skip, regexp.MustCompile(p))
	}
	for _, p := range c.ExtractRegexes {
		extract = append(extract, regexp.MustCompile(p))
	}
	return skip, extract
}
