// Package jadve adapts the Jadve AI chat backend. Jadve streams a
// Vercel AI-style frame format where content deltas arrive as
// 0:"..." tokens rather than SSE JSON events.
package jadve

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/scoutkit/conversation"
	"github.com/kbukum/scoutkit/httpclient"
	"github.com/kbukum/scoutkit/provider"
	"github.com/kbukum/scoutkit/sanitize"
)

const (
	providerName = "jadve"
	baseURL      = "https://ai-api.jadve.com"
	chatPath     = "/api/chat"
	defaultModel = "gpt-5-mini"
)

var models = []string{
	"gpt-5-mini",
	"claude-3-5-haiku-20241022",
}

func init() {
	provider.Register(providerName, New)
}

type vendor struct {
	model string
}

// New builds the Jadve provider.
func New(settings provider.Settings) (provider.Provider, error) {
	model, err := provider.ResolveModel(providerName, settings.Model, models, defaultModel)
	if err != nil {
		return nil, err
	}
	v := &vendor{model: model}

	httpClient, err := httpclient.New(httpclient.Config{
		Name:    providerName,
		BaseURL: baseURL,
		Timeout: settings.Timeout,
		Proxy:   settings.Proxy,
		Headers: map[string]string{
			"accept":  "*/*",
			"origin":  "https://jadve.com",
			"referer": "https://jadve.com/",
			"sec-gpc": "1",
		},
	})
	if err != nil {
		return nil, err
	}

	conv, err := conversation.New(settings.Conversation)
	if err != nil {
		return nil, err
	}
	return provider.NewClient(v, httpClient, conv), nil
}

func (v *vendor) Name() string     { return providerName }
func (v *vendor) Models() []string { return append([]string(nil), models...) }
func (v *vendor) Model() string    { return v.model }

func (v *vendor) BuildRequest(prompt string) (httpclient.Request, error) {
	body := map[string]any{
		"id": requestID(),
		"messages": []map[string]any{{
			"role":    "user",
			"content": []map[string]string{{"type": "text", "text": prompt}},
		}},
		"model":             v.model,
		"botId":             "",
		"chatId":            "",
		"stream":            true,
		"returnTokensUsage": true,
		"useTools":          false,
	}
	return httpclient.Request{
		Method: http.MethodPost,
		Path:   chatPath,
		Body:   body,
	}, nil
}

// requestID produces the 16-hex-character id Jadve expects.
func requestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

func (v *vendor) Pipeline() sanitize.Config {
	return sanitize.Config{
		ExtractRegexes: []string{`0:"(.*?)"(?:,|$)`},
	}
}
