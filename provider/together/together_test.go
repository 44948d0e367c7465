package together

import (
	"context"
	"strings"
	"testing"

	apperrors "github.com/kbukum/scoutkit/errors"
	"github.com/kbukum/scoutkit/provider"
	"github.com/kbukum/scoutkit/sanitize"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(provider.Settings{})
	if apperrors.CodeOf(err) != apperrors.ErrCodeConfiguration {
		t.Fatalf("err = %v, want configuration error", err)
	}
	if _, err := New(provider.Settings{APIKey: "tok"}); err != nil {
		t.Fatalf("New with key: %v", err)
	}
}

func TestPipelineDeltas(t *testing.T) {
	body := strings.Join([]string{
		`data: {"choices":[{"delta":{"role":"assistant"}}]}`,
		`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
		`data: {"choices":[{"delta":{"content":"lo"}}]}`,
		`data: [DONE]`,
	}, "\n")

	v := &vendor{model: defaultModel, systemPrompt: defaultSystemPrompt}
	s, err := sanitize.FromString(body, v.Pipeline())
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	defer s.Close()
	text, err := s.Text(context.Background())
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "Hello" {
		t.Errorf("text = %q, want %q", text, "Hello")
	}
}

func TestBuildRequestMessages(t *testing.T) {
	v := &vendor{model: "Qwen/QwQ-32B", systemPrompt: "sys"}
	req, err := v.BuildRequest("question")
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	body := req.Body.(map[string]any)
	if body["model"] != "Qwen/QwQ-32B" || body["stream"] != true {
		t.Errorf("body = %#v", body)
	}
	msgs := body["messages"].([]map[string]string)
	if len(msgs) != 2 || msgs[0]["role"] != "system" || msgs[1]["content"] != "question" {
		t.Errorf("messages = %#v", msgs)
	}
}
