// Package twoai adapts the Two AI Sutra chat API, which authenticates
// with a session token header rather than a bearer credential.
package twoai

import (
	"net/http"

	"github.com/kbukum/scoutkit/conversation"
	apperrors "github.com/kbukum/scoutkit/errors"
	"github.com/kbukum/scoutkit/httpclient"
	"github.com/kbukum/scoutkit/provider"
	"github.com/kbukum/scoutkit/sanitize"
)

const (
	providerName = "twoai"
	baseURL      = "https://chatsutra-server.account-2b0.workers.dev"
	chatPath     = "/v2/chat/completions"
	defaultModel = "sutra-v2"

	maxTokens   = 2048
	temperature = 0.6
)

var models = []string{
	"sutra-v2",
	"sutra-r0",
}

func init() {
	provider.Register(providerName, New)
}

type vendor struct {
	model        string
	systemPrompt string
}

// New builds the Two AI provider. An API key is required and is sent
// as the X-Session-Token header.
func New(settings provider.Settings) (provider.Provider, error) {
	if settings.APIKey == "" {
		return nil, apperrors.Configuration("twoai requires an API key")
	}
	model, err := provider.ResolveModel(providerName, settings.Model, models, defaultModel)
	if err != nil {
		return nil, err
	}
	v := &vendor{model: model, systemPrompt: settings.SystemPrompt}

	httpClient, err := httpclient.New(httpclient.Config{
		Name:    providerName,
		BaseURL: baseURL,
		Timeout: settings.Timeout,
		Proxy:   settings.Proxy,
		Auth:    httpclient.APIKeyAuth(settings.APIKey, "X-Session-Token"),
		Headers: map[string]string{"Accept": "text/event-stream"},
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
	messages := make([]map[string]string, 0, 2)
	if v.systemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": v.systemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	body := map[string]any{
		"messages":    messages,
		"model":       v.model,
		"temperature": temperature,
		"max_tokens":  maxTokens,
		"stream":      true,
		"extra_body": map[string]any{
			"online_search": false,
		},
	}
	return httpclient.Request{
		Method: http.MethodPost,
		Path:   chatPath,
		Body:   body,
	}, nil
}

func (v *vendor) Pipeline() sanitize.Config {
	return sanitize.Config{
		IntroValue:  "data:",
		ToJSON:      true,
		SkipMarkers: []string{"[DONE]"},
		Extractor:   sanitize.TextPath("choices", "delta", "content"),
	}
}
