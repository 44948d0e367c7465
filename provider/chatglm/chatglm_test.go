package chatglm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kbukum/scoutkit/httpclient"
	"github.com/kbukum/scoutkit/sanitize"
)

func TestPipelineDeltaContent(t *testing.T) {
	body := strings.Join([]string{
		`data: {"type":"chat:completion","data":{"delta_content":"GLM "}}`,
		`data: {"type":"chat:completion","data":{"delta_content":"says \"hi\""}}`,
		`data: {"type":"chat:completion","data":{"usage":{}}}`,
		`data: {"type":"chat:completion","data":{"edit_content":" (edited)"}}`,
	}, "\n")

	v := &vendor{model: defaultModel}
	s, err := sanitize.FromString(body, v.Pipeline())
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	defer s.Close()
	text, err := s.Text(context.Background())
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	want := `GLM says "hi" (edited)`
	if text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
}

func TestPipelineSkipsMarkupFrames(t *testing.T) {
	body := strings.Join([]string{
		`data: {"data":{"delta_content":"<summary>Thought for 2s</summary>"}}`,
		`data: {"data":{"delta_content":"visible"}}`,
	}, "\n")

	v := &vendor{model: defaultModel}
	s, err := sanitize.FromString(body, v.Pipeline())
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	defer s.Close()
	text, err := s.Text(context.Background())
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "visible" {
		t.Errorf("text = %q, want %q", text, "visible")
	}
}

func TestSessionFetchedOnceAndReused(t *testing.T) {
	var authCalls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case authPath:
			authCalls.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "guest-token"})
		case "/":
			w.Header().Set("Set-Cookie", "session=abc")
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := httpclient.New(httpclient.Config{Name: providerName, BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	v := &vendor{model: defaultModel, http: client}

	for i := 0; i < 3; i++ {
		req, err := v.BuildRequest("hello")
		if err != nil {
			t.Fatalf("BuildRequest: %v", err)
		}
		if req.Headers["Authorization"] != "Bearer guest-token" {
			t.Errorf("authorization = %q", req.Headers["Authorization"])
		}
		if req.Headers["Cookie"] != "session=abc" {
			t.Errorf("cookie = %q", req.Headers["Cookie"])
		}
	}
	if n := authCalls.Load(); n != 1 {
		t.Errorf("auth endpoint called %d times, want 1", n)
	}
}

func TestBuildRequestPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == authPath {
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "t"})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := httpclient.New(httpclient.Config{Name: providerName, BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	v := &vendor{model: "0727-360B-API", http: client}
	req, err := v.BuildRequest("prompt")
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	body := req.Body.(map[string]any)
	if body["model"] != "0727-360B-API" || body["chat_id"] != "local" {
		t.Errorf("body = %#v", body)
	}
	features := body["features"].(map[string]any)
	if features["enable_thinking"] != true || features["web_search"] != false {
		t.Errorf("features = %#v", features)
	}
	if id, _ := body["id"].(string); len(id) != 36 {
		t.Errorf("id = %q, want a UUID", id)
	}
}
