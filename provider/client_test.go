package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kbukum/scoutkit/conversation"
	apperrors "github.com/kbukum/scoutkit/errors"
	"github.com/kbukum/scoutkit/httpclient"
	"github.com/kbukum/scoutkit/sanitize"
)

// stubProvider satisfies Provider for registry tests.
type stubProvider struct {
	name  string
	model string
}

func (s *stubProvider) Name() string      { return s.name }
func (s *stubProvider) Models() []string  { return []string{s.model} }
func (s *stubProvider) Ask(ctx context.Context, prompt string, opts ...AskOption) (string, error) {
	return "", nil
}
func (s *stubProvider) Stream(ctx context.Context, prompt string, opts ...AskOption) (Iterator[sanitize.Chunk], error) {
	return nil, nil
}

// fakeVendor is a minimal SSE-style vendor for Client tests.
type fakeVendor struct {
	name       string
	lastPrompt string
	refreshes  atomic.Int64
}

func (v *fakeVendor) Name() string     { return v.name }
func (v *fakeVendor) Models() []string { return []string{"fake-default"} }
func (v *fakeVendor) Model() string    { return "fake-default" }

func (v *fakeVendor) BuildRequest(prompt string) (httpclient.Request, error) {
	v.lastPrompt = prompt
	return httpclient.Request{
		Method: http.MethodPost,
		Path:   "/chat",
		Body:   map[string]string{"prompt": prompt},
	}, nil
}

func (v *fakeVendor) Pipeline() sanitize.Config {
	return sanitize.Config{
		IntroValue:  "data:",
		ToJSON:      true,
		SkipMarkers: []string{"[DONE]"},
		Extractor:   sanitize.TextPath("delta"),
	}
}

func (v *fakeVendor) RefreshIdentity() { v.refreshes.Add(1) }

func newClientForServer(t *testing.T, vendor Vendor, srvURL string, convCfg conversation.Config) *Client {
	t.Helper()
	httpClient, err := httpclient.New(httpclient.Config{Name: vendor.Name(), BaseURL: srvURL})
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	conv, err := conversation.New(convCfg)
	if err != nil {
		t.Fatalf("conversation.New: %v", err)
	}
	return NewClient(vendor, httpClient, conv)
}

func sseHandler(lines ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			_, _ = w.Write([]byte(line + "\n"))
		}
	}
}

func TestClientAskJoinsChunks(t *testing.T) {
	srv := httptest.NewServer(sseHandler(
		`data: {"delta": "Hel"}`,
		`data: {"delta": "lo"}`,
		`data: [DONE]`,
	))
	defer srv.Close()

	vendor := &fakeVendor{name: "fake"}
	c := newClientForServer(t, vendor, srv.URL, conversation.Config{})

	got, err := c.Ask(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != "Hello" {
		t.Errorf("Ask = %q, want Hello", got)
	}
}

func TestClientStreamCommitsHistory(t *testing.T) {
	srv := httptest.NewServer(sseHandler(
		`data: {"delta": "Hi!"}`,
		`data: [DONE]`,
	))
	defer srv.Close()

	vendor := &fakeVendor{name: "fake"}
	c := newClientForServer(t, vendor, srv.URL, conversation.Config{Enabled: true, Intro: "I."})

	if _, err := c.Ask(context.Background(), "greet me"); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	second := c.conv.GenCompletePrompt("again")
	if !strings.Contains(second, "User : greet me\nLLM : Hi!") {
		t.Errorf("history missing committed turn, prompt = %q", second)
	}
}

func TestClientComposedPromptSentUpstream(t *testing.T) {
	srv := httptest.NewServer(sseHandler(`data: {"delta": "ok"}`, `data: [DONE]`))
	defer srv.Close()

	vendor := &fakeVendor{name: "fake"}
	c := newClientForServer(t, vendor, srv.URL, conversation.Config{Enabled: true, Intro: "Be brief."})

	if _, err := c.Ask(context.Background(), "hello"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !strings.HasPrefix(vendor.lastPrompt, "Be brief.") {
		t.Errorf("upstream prompt should start with intro, got %q", vendor.lastPrompt)
	}
	if !strings.Contains(vendor.lastPrompt, "User : hello") {
		t.Errorf("upstream prompt should carry the user turn, got %q", vendor.lastPrompt)
	}
}

func TestClientOptimizerReplacesPrompt(t *testing.T) {
	srv := httptest.NewServer(sseHandler(`data: {"delta": "x=1"}`, `data: [DONE]`))
	defer srv.Close()

	vendor := &fakeVendor{name: "fake"}
	c := newClientForServer(t, vendor, srv.URL, conversation.Config{Enabled: true})

	if _, err := c.Ask(context.Background(), "assign 1 to x", WithOptimizer("code")); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !strings.Contains(vendor.lastPrompt, "Request: assign 1 to x") {
		t.Errorf("optimizer output not sent, got %q", vendor.lastPrompt)
	}
	if strings.Contains(vendor.lastPrompt, "User :") {
		t.Error("non-conversational optimizer should bypass the composed prompt")
	}
}

func TestClientUnknownOptimizer(t *testing.T) {
	vendor := &fakeVendor{name: "fake"}
	c := newClientForServer(t, vendor, "http://127.0.0.1:1", conversation.Config{})

	_, err := c.Ask(context.Background(), "hi", WithOptimizer("nope"))
	if apperrors.CodeOf(err) != apperrors.ErrCodeConfiguration {
		t.Errorf("code = %s, want %s", apperrors.CodeOf(err), apperrors.ErrCodeConfiguration)
	}
}

func TestClientRefreshesIdentityOn403(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`data: {"delta": "recovered"}` + "\n" + `data: [DONE]` + "\n"))
	}))
	defer srv.Close()

	vendor := &fakeVendor{name: "fake"}
	c := newClientForServer(t, vendor, srv.URL, conversation.Config{})

	got, err := c.Ask(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Ask after refresh: %v", err)
	}
	if got != "recovered" {
		t.Errorf("Ask = %q, want recovered", got)
	}
	if vendor.refreshes.Load() != 1 {
		t.Errorf("refreshes = %d, want 1", vendor.refreshes.Load())
	}
}

func TestClientRefreshRetriesOnlyOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	vendor := &fakeVendor{name: "fake"}
	c := newClientForServer(t, vendor, srv.URL, conversation.Config{})

	_, err := c.Ask(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected failure when refresh does not help")
	}
	if apperrors.CodeOf(err) != apperrors.ErrCodeFailedGeneration {
		t.Errorf("code = %s, want %s", apperrors.CodeOf(err), apperrors.ErrCodeFailedGeneration)
	}
	if vendor.refreshes.Load() != 1 {
		t.Errorf("refreshes = %d, want exactly 1", vendor.refreshes.Load())
	}
}

func TestClientWrapsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	vendor := &fakeVendor{name: "fake"}
	c := newClientForServer(t, vendor, srv.URL, conversation.Config{})

	_, err := c.Ask(context.Background(), "hi")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeFailedGeneration {
		t.Fatalf("err = %v, want FailedGeneration", err)
	}
	if appErr.Cause == nil {
		t.Error("wrapped error should carry the upstream cause")
	}
}

func TestClientPartialTextCommittedOnStreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		_, _ = w.Write([]byte(`data: {"delta": "part"}` + "\n"))
		flusher.Flush()
		// Drop the connection mid-stream.
		conn, _, _ := w.(http.Hijacker).Hijack()
		_ = conn.Close()
	}))
	defer srv.Close()

	vendor := &fakeVendor{name: "fake"}
	c := newClientForServer(t, vendor, srv.URL, conversation.Config{Enabled: true, Intro: "I."})

	got, err := c.Ask(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error from dropped connection")
	}
	if got != "part" {
		t.Errorf("partial text = %q, want part", got)
	}
	if !strings.Contains(c.conv.GenCompletePrompt("x"), "LLM : part") {
		t.Error("partial text should be committed to history")
	}
}
