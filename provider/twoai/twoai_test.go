package twoai

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
}

func TestPipelineDeltas(t *testing.T) {
	body := strings.Join([]string{
		`data: {"choices":[{"delta":{"content":"Sutra "}}]}`,
		`data: {"choices":[{"delta":{"content":"speaks"}}]}`,
		`data: [DONE]`,
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
	if text != "Sutra speaks" {
		t.Errorf("text = %q", text)
	}
}

func TestBuildRequestOmitsEmptySystemPrompt(t *testing.T) {
	v := &vendor{model: "sutra-r0"}
	req, err := v.BuildRequest("hi")
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	body := req.Body.(map[string]any)
	msgs := body["messages"].([]map[string]string)
	if len(msgs) != 1 || msgs[0]["role"] != "user" {
		t.Errorf("messages = %#v", msgs)
	}

	v.systemPrompt = "be brief"
	req, err = v.BuildRequest("hi")
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	msgs = req.Body.(map[string]any)["messages"].([]map[string]string)
	if len(msgs) != 2 || msgs[0]["content"] != "be brief" {
		t.Errorf("messages = %#v", msgs)
	}
}
