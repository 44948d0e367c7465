// Package server exposes the providers behind an OpenAI-compatible
// HTTP API: POST /v1/chat/completions (streaming and buffered),
// GET /v1/models, and GET /health.
//
// The server is backed by Gin, wrapped with h2c so HTTP/2 cleartext
// clients work on the same port. Model routing uses the form
// "<provider>/<model>" (a bare provider name selects its default
// model).
package server
