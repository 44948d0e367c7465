package provider

import (
	"context"
	"time"

	"github.com/kbukum/scoutkit/conversation"
	"github.com/kbukum/scoutkit/sanitize"
)

// Provider is a chat backend. Implementations are safe for concurrent
// use unless documented otherwise.
type Provider interface {
	// Name returns the provider identifier, e.g. "scira".
	Name() string

	// Models returns the model names this provider accepts.
	Models() []string

	// Ask sends a prompt and returns the complete response text.
	Ask(ctx context.Context, prompt string, opts ...AskOption) (string, error)

	// Stream sends a prompt and returns a pull iterator over response
	// chunks. The caller must Close the iterator.
	Stream(ctx context.Context, prompt string, opts ...AskOption) (Iterator[sanitize.Chunk], error)
}

// Settings configures a provider at construction. Vendors ignore
// fields they have no use for.
type Settings struct {
	// Model selects the vendor model. Empty picks the vendor default.
	// Unknown models are a configuration error.
	Model string

	// APIKey authenticates against vendors that require one.
	APIKey string

	// Proxy routes upstream traffic through the given proxy URL.
	Proxy string

	// Timeout bounds buffered upstream requests.
	Timeout time.Duration

	// SystemPrompt overrides the vendor default system prompt.
	SystemPrompt string

	// Browser selects the fingerprint browser family for vendors that
	// impersonate a browser. Empty picks chrome.
	Browser string

	// Conversation configures history tracking.
	Conversation conversation.Config
}

type askOptions struct {
	optimizer        string
	conversationally bool
}

// AskOption adjusts one Ask or Stream call.
type AskOption func(*askOptions)

// WithOptimizer applies the named prompt optimizer before sending.
// By default the optimizer runs on the bare prompt; combine with
// Conversationally to run it on the full composed prompt instead.
func WithOptimizer(name string) AskOption {
	return func(o *askOptions) { o.optimizer = name }
}

// Conversationally makes an optimizer operate on the composed prompt
// (intro plus history) instead of the bare prompt.
func Conversationally() AskOption {
	return func(o *askOptions) { o.conversationally = true }
}

func applyAskOptions(opts []AskOption) askOptions {
	var o askOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
