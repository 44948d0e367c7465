package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/kbukum/scoutkit/errors"
)

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestDoJSONBody(t *testing.T) {
	var gotBody map[string]any
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, Config{Name: "test", BaseURL: srv.URL})
	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/api/chat",
		Body:   map[string]string{"prompt": "hello"},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("status = %d, want 2xx", resp.StatusCode)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q, want application/json", gotContentType)
	}
	if gotBody["prompt"] != "hello" {
		t.Errorf("body prompt = %v, want hello", gotBody["prompt"])
	}
}

func TestDoHeaderMerging(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	c := newTestClient(t, Config{
		Name:    "test",
		BaseURL: srv.URL,
		Headers: map[string]string{"User-Agent": "default-agent", "Accept": "application/json"},
	})
	_, err := c.Do(context.Background(), Request{
		Method:  http.MethodGet,
		Path:    "/",
		Headers: map[string]string{"User-Agent": "override-agent"},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if ua := got.Get("User-Agent"); ua != "override-agent" {
		t.Errorf("User-Agent = %q, request header should override default", ua)
	}
	if accept := got.Get("Accept"); accept != "application/json" {
		t.Errorf("Accept = %q, default header should survive", accept)
	}
}

func TestDoBearerAuth(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	c := newTestClient(t, Config{Name: "test", BaseURL: srv.URL, Auth: BearerAuth("secret")})
	if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q, want Bearer secret", auth)
	}
}

func TestDoUpstreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("blocked"))
	}))
	defer srv.Close()

	c := newTestClient(t, Config{Name: "scira", BaseURL: srv.URL})
	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if err == nil {
		t.Fatal("expected error for 403")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response should still carry the status, got %+v", resp)
	}
	if apperrors.CodeOf(err) != apperrors.ErrCodeUpstreamProtocol {
		t.Errorf("code = %s, want %s", apperrors.CodeOf(err), apperrors.ErrCodeUpstreamProtocol)
	}
	status, ok := UpstreamStatus(err)
	if !ok || status != http.StatusForbidden {
		t.Errorf("UpstreamStatus = %d, %v; want 403, true", status, ok)
	}
}

func TestDoRetriesRateLimit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	retry := DefaultRetryConfig()
	retry.InitialBackoff = time.Millisecond
	c := newTestClient(t, Config{Name: "test", BaseURL: srv.URL, Retry: retry})

	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if err != nil {
		t.Fatalf("Do after retries: %v", err)
	}
	if string(resp.Body) != "ok" {
		t.Errorf("body = %q, want ok", resp.Body)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	retry := DefaultRetryConfig()
	retry.InitialBackoff = time.Millisecond
	c := newTestClient(t, Config{Name: "test", BaseURL: srv.URL, Retry: retry})

	if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"}); err == nil {
		t.Fatal("expected error for 400")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (400 is not retryable)", calls)
	}
}

func TestDoStreamDeliversRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		_, _ = io.WriteString(w, "data: {\"delta\":\"Hel\"}\n\n")
		flusher.Flush()
		_, _ = io.WriteString(w, "data: {\"delta\":\"lo\"}\n\n")
		flusher.Flush()
	}))
	defer srv.Close()

	c := newTestClient(t, Config{Name: "test", BaseURL: srv.URL})
	stream, err := c.DoStream(context.Background(), Request{Method: http.MethodPost, Path: "/stream"})
	if err != nil {
		t.Fatalf("DoStream: %v", err)
	}
	defer stream.Close()

	body, err := io.ReadAll(stream.Body)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	want := "data: {\"delta\":\"Hel\"}\n\ndata: {\"delta\":\"lo\"}\n\n"
	if string(body) != want {
		t.Errorf("stream body = %q, want %q", body, want)
	}
}

func TestDoStreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	c := newTestClient(t, Config{Name: "gmi", BaseURL: srv.URL})
	_, err := c.DoStream(context.Background(), Request{Method: http.MethodPost, Path: "/stream"})
	if err == nil {
		t.Fatal("expected error for 429")
	}
	status, ok := UpstreamStatus(err)
	if !ok || status != http.StatusTooManyRequests {
		t.Errorf("UpstreamStatus = %d, %v; want 429, true", status, ok)
	}
	appErr, _ := apperrors.AsAppError(err)
	if !appErr.Retryable {
		t.Error("429 upstream error should be retryable")
	}
}

func TestDoConnectionFailure(t *testing.T) {
	c := newTestClient(t, Config{Name: "test", BaseURL: "http://127.0.0.1:1"})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if apperrors.CodeOf(err) != apperrors.ErrCodeConnectionFailed {
		t.Errorf("code = %s, want %s", apperrors.CodeOf(err), apperrors.ErrCodeConnectionFailed)
	}
}

func TestNewRejectsBadProxy(t *testing.T) {
	_, err := New(Config{Name: "test", Proxy: "not a url"})
	if apperrors.CodeOf(err) != apperrors.ErrCodeConfiguration {
		t.Errorf("code = %s, want %s", apperrors.CodeOf(err), apperrors.ErrCodeConfiguration)
	}
}

func TestQueryParameters(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("model")
	}))
	defer srv.Close()

	c := newTestClient(t, Config{Name: "test", BaseURL: srv.URL})
	_, err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/models",
		Query:  map[string]string{"model": "glm-4.5"},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotQuery != "glm-4.5" {
		t.Errorf("query model = %q, want glm-4.5", gotQuery)
	}
}
