package sanitize

// Frame is one logical unit of streamed content after splitting: one SSE
// event body, one line, or a raw pass-through. Frames live for a single
// pipeline iteration and are never retained.
type Frame struct {
	// Text is the frame's raw text with any intro prefix stripped.
	Text string
	// JSON is the decoded value (map, slice, or scalar) when the stream is
	// configured with ToJSON and decoding succeeded. Nil otherwise.
	JSON any
}

// Object returns the decoded frame as a JSON object, or nil if the frame
// was not decoded to one. Convenience for extractors walking nested shapes.
func (f Frame) Object() map[string]any {
	m, _ := f.JSON.(map[string]any)
	return m
}

// Chunk is the unit of extracted content yielded to the consumer. Once
// yielded it is never re-yielded or mutated.
type Chunk struct {
	// Text is the visible content delta for this frame.
	Text string
	// Reasoning carries the model's thinking delta for vendors that stream
	// it as a separate channel. Consumers typically wrap the reasoning
	// channel in <think> markers when flattening to a transcript.
	Reasoning string
}

// Empty reports whether the chunk carries no content on any channel.
func (c Chunk) Empty() bool { return c.Text == "" && c.Reasoning == "" }

// Extractor derives the content delta from one decoded frame.
//
// Implementations must be total and side-effect free: every frame gets an
// answer, and ok=false means "no content this frame" — the pipeline moves
// on without yielding. Malformed input is never an extractor concern; by
// the time a frame reaches extraction it has already passed decoding.
type Extractor interface {
	Extract(f Frame) (Chunk, bool)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(f Frame) (Chunk, bool)

// Extract implements Extractor.
func (fn ExtractorFunc) Extract(f Frame) (Chunk, bool) { return fn(f) }

// TextPath returns an Extractor that walks a decoded JSON object along the
// given keys and yields the string found at the end of the path. Integer
// steps are not supported; slice hops always take the first element, which
// matches the choices[0]-style shapes these backends use.
func TextPath(keys ...string) Extractor {
	return ExtractorFunc(func(f Frame) (Chunk, bool) {
		cur := f.JSON
		for _, k := range keys {
			if s, ok := cur.([]any); ok {
				if len(s) == 0 {
					return Chunk{}, false
				}
				cur = s[0]
			}
			m, ok := cur.(map[string]any)
			if !ok {
				return Chunk{}, false
			}
			cur = m[k]
		}
		if s, ok := cur.([]any); ok {
			if len(s) == 0 {
				return Chunk{}, false
			}
			cur = s[0]
		}
		s, ok := cur.(string)
		if !ok || s == "" {
			return Chunk{}, false
		}
		return Chunk{Text: s}, true
	})
}
