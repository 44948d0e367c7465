package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/scoutkit/conversation"
	apperrors "github.com/kbukum/scoutkit/errors"
	"github.com/kbukum/scoutkit/httpclient"
	"github.com/kbukum/scoutkit/logger"
	"github.com/kbukum/scoutkit/observability"
	"github.com/kbukum/scoutkit/optimizers"
	"github.com/kbukum/scoutkit/sanitize"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Vendor is the per-backend half of a provider: it knows the request
// shape and the normalization pipeline of one upstream. The shared
// Client supplies everything else.
type Vendor interface {
	// Name returns the vendor identifier.
	Name() string

	// Models returns the accepted model names.
	Models() []string

	// Model returns the resolved model in use.
	Model() string

	// BuildRequest builds the upstream request for a fully composed
	// prompt.
	BuildRequest(prompt string) (httpclient.Request, error)

	// Pipeline returns the normalization pipeline configuration for
	// this vendor's response format.
	Pipeline() sanitize.Config
}

// IdentityRefresher is implemented by vendors that impersonate a
// browser and can swap identity when the upstream starts rejecting the
// current one.
type IdentityRefresher interface {
	RefreshIdentity()
}

// Client composes a Vendor with the shared ask/stream machinery:
// conversation history, optimizers, transport, normalization, and
// history commit. Client implements Provider.
type Client struct {
	vendor  Vendor
	http    *httpclient.Client
	conv    *conversation.Conversation
	log     *logger.Logger
	metrics *observability.Metrics
}

// ClientOption adjusts a Client at construction.
type ClientOption func(*Client)

// WithMetrics enables metric recording for completions and chunks.
func WithMetrics(m *observability.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates the shared provider composition for a vendor.
func NewClient(vendor Vendor, httpClient *httpclient.Client, conv *conversation.Conversation, opts ...ClientOption) *Client {
	c := &Client{
		vendor: vendor,
		http:   httpClient,
		conv:   conv,
		log:    logger.WithProvider(vendor.Name()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements Provider.
func (c *Client) Name() string { return c.vendor.Name() }

// Models implements Provider.
func (c *Client) Models() []string { return c.vendor.Models() }

// Ask sends a prompt and drains the stream into a single string. On a
// mid-stream failure the text received so far is returned alongside
// the error, and is already committed to history.
func (c *Client) Ask(ctx context.Context, prompt string, opts ...AskOption) (string, error) {
	it, err := c.Stream(ctx, prompt, opts...)
	if err != nil {
		return "", err
	}
	defer func() { _ = it.Close() }()

	var b strings.Builder
	for {
		chunk, ok, err := it.Next(ctx)
		if err != nil {
			return b.String(), err
		}
		if !ok {
			return b.String(), nil
		}
		b.WriteString(chunk.Text)
	}
}

// Stream sends a prompt and returns the normalized chunk iterator.
// Whatever text has been delivered when the iterator finishes — by
// exhaustion, error, or Close — is committed to conversation history.
func (c *Client) Stream(ctx context.Context, prompt string, opts ...AskOption) (Iterator[sanitize.Chunk], error) {
	o := applyAskOptions(opts)

	ctx, span := observability.StartSpan(ctx, observability.SpanStream)
	span.SetAttributes(
		attribute.String(observability.AttrProvider, c.vendor.Name()),
		attribute.String(observability.AttrModel, c.vendor.Model()),
	)

	finalPrompt, err := c.composePrompt(prompt, o)
	if err != nil {
		span.RecordError(err)
		span.End()
		return nil, err
	}

	stream, err := c.open(ctx, finalPrompt)
	if err != nil {
		span.RecordError(err)
		span.End()
		return nil, c.wrap(err)
	}

	return &clientStream{
		client: c,
		inner:  stream,
		prompt: prompt,
		span:   span,
		start:  time.Now(),
	}, nil
}

// composePrompt runs the conversation and optimizer stages. An
// optimizer by default replaces the composed prompt with a transform of
// the bare prompt; Conversationally keeps the composed prompt as the
// transform input.
func (c *Client) composePrompt(prompt string, o askOptions) (string, error) {
	composed := c.conv.GenCompletePrompt(prompt)
	if o.optimizer == "" {
		return composed, nil
	}

	input := prompt
	if o.conversationally {
		input = composed
	}
	return optimizers.Apply(o.optimizer, input)
}

// open performs the upstream request and wires the response into the
// normalization pipeline. A 403 or 429 triggers one identity refresh
// and retry for vendors that support it.
func (c *Client) open(ctx context.Context, prompt string) (*sanitize.Stream, error) {
	resp, err := c.doStream(ctx, prompt)
	if err != nil {
		if status, ok := httpclient.UpstreamStatus(err); ok &&
			(status == http.StatusForbidden || status == http.StatusTooManyRequests) {
			if refresher, ok := c.vendor.(IdentityRefresher); ok {
				c.log.Warn("refreshing identity after upstream rejection",
					logger.Fields(logger.FieldStatus, status))
				refresher.RefreshIdentity()
				resp, err = c.doStream(ctx, prompt)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	stream, err := sanitize.New(resp.Body, c.vendor.Pipeline())
	if err != nil {
		_ = resp.Close()
		return nil, err
	}
	return stream, nil
}

func (c *Client) doStream(ctx context.Context, prompt string) (*httpclient.StreamResponse, error) {
	req, err := c.vendor.BuildRequest(prompt)
	if err != nil {
		return nil, err
	}
	return c.http.DoStream(ctx, req)
}

// wrap collapses transport and protocol failures into the single
// generation failure every provider surfaces. Configuration errors
// pass through untouched.
func (c *Client) wrap(err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		switch appErr.Code {
		case apperrors.ErrCodeFailedGeneration, apperrors.ErrCodeConfiguration, apperrors.ErrCodeInvalidInput:
			return err
		}
	}
	return apperrors.FailedGeneration(c.vendor.Name(), err)
}

// clientStream decorates the normalization stream with text
// accumulation and the on-exit history commit.
type clientStream struct {
	client *Client
	inner  *sanitize.Stream
	prompt string
	span   trace.Span
	start  time.Time

	text      strings.Builder
	chunks    int64
	committed bool
}

// Next implements Iterator. Errors are collapsed into FailedGeneration;
// a terminal result (exhaustion or error) commits accumulated text to
// history.
func (s *clientStream) Next(ctx context.Context) (sanitize.Chunk, bool, error) {
	chunk, ok, err := s.inner.Next(ctx)
	if err != nil {
		s.finish("error", err)
		return sanitize.Chunk{}, false, s.client.wrap(err)
	}
	if !ok {
		s.finish("ok", nil)
		return sanitize.Chunk{}, false, nil
	}
	s.text.WriteString(chunk.Text)
	s.chunks++
	return chunk, true, nil
}

// Close implements Iterator. Closing an unfinished stream still commits
// whatever text was delivered.
func (s *clientStream) Close() error {
	s.finish("closed", nil)
	return s.inner.Close()
}

// finish commits history and ends the span exactly once.
func (s *clientStream) finish(status string, err error) {
	if s.committed {
		return
	}
	s.committed = true

	if text := s.text.String(); text != "" {
		s.client.conv.UpdateChatHistory(s.prompt, text)
	}

	if err != nil {
		s.span.RecordError(err)
	}
	s.span.SetAttributes(
		attribute.String(observability.AttrStatus, status),
		attribute.Int64(observability.AttrChunks, s.chunks),
	)
	s.span.End()

	if m := s.client.metrics; m != nil {
		ctx := context.Background()
		m.RecordGeneration(ctx, s.client.vendor.Name(), s.client.vendor.Model(), status, time.Since(s.start))
		m.RecordStreamChunks(ctx, s.client.vendor.Name(), s.chunks)
	}
}
