// Package sanitize normalizes raw upstream response streams into clean,
// incrementally consumable text deltas.
//
// Reverse-engineered AI backends deliver content in wildly inconsistent
// shapes: SSE events with "data:" prefixes, newline-delimited JSON, tagged
// HTML-ish noise, or plain text — often split across arbitrary network
// chunk boundaries. A Stream composes three stages over a single io.Reader:
//
//   - splitter: reassembles logical lines from arbitrary chunk boundaries,
//     filters and strips an optional intro prefix (e.g. "data:"), and
//     flushes a final unterminated line at EOF.
//   - decoder: detects stream-termination sentinels (e.g. "[DONE]"),
//     optionally parses each frame as JSON (with an optional repair pass),
//     and either drops or passes through frames that fail to decode.
//   - extractor: applies skip rules, extract rules, and a pluggable
//     Extractor in fixed precedence order to derive the visible text delta.
//
// The pipeline is pull-based and single-threaded: consumption is driven
// entirely by Next, one logical frame at a time, with no buffering beyond
// the splitter's partial-line buffer. Malformed individual frames never
// abort an otherwise good stream; transport errors from the underlying
// reader propagate to the caller.
package sanitize
