// Package together adapts the Together AI OpenAI-compatible chat
// completion API.
package together

import (
	"net/http"

	"github.com/kbukum/scoutkit/conversation"
	apperrors "github.com/kbukum/scoutkit/errors"
	"github.com/kbukum/scoutkit/httpclient"
	"github.com/kbukum/scoutkit/provider"
	"github.com/kbukum/scoutkit/sanitize"
)

const (
	providerName = "together"
	baseURL      = "https://api.together.xyz"
	chatPath     = "/v1/chat/completions"
	defaultModel = "meta-llama/Llama-3.1-8B-Instruct-Turbo"

	defaultSystemPrompt = "You are a helpful assistant."
)

var models = []string{
	"meta-llama/Llama-3.1-8B-Instruct-Turbo",
	"meta-llama/Llama-3.1-70B-Instruct-Turbo",
	"meta-llama/Llama-3.3-70B-Instruct-Turbo",
	"meta-llama/Meta-Llama-3.1-405B-Instruct-Turbo",
	"mistralai/Mixtral-8x7B-Instruct-v0.1",
	"Qwen/QwQ-32B",
	"Qwen/Qwen2.5-72B-Instruct-Turbo",
	"Qwen/Qwen2.5-Coder-32B-Instruct",
	"deepseek-ai/DeepSeek-V3",
}

func init() {
	provider.Register(providerName, New)
}

type vendor struct {
	model        string
	systemPrompt string
}

// New builds the Together provider. An API key is required.
func New(settings provider.Settings) (provider.Provider, error) {
	if settings.APIKey == "" {
		return nil, apperrors.Configuration("together requires an API key")
	}
	model, err := provider.ResolveModel(providerName, settings.Model, models, defaultModel)
	if err != nil {
		return nil, err
	}
	systemPrompt := settings.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	v := &vendor{model: model, systemPrompt: systemPrompt}

	httpClient, err := httpclient.New(httpclient.Config{
		Name:    providerName,
		BaseURL: baseURL,
		Timeout: settings.Timeout,
		Proxy:   settings.Proxy,
		Auth:    httpclient.BearerAuth(settings.APIKey),
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
	return httpclient.Request{
		Method: http.MethodPost,
		Path:   chatPath,
		Body: map[string]any{
			"model": v.model,
			"messages": []map[string]string{
				{"role": "system", "content": v.systemPrompt},
				{"role": "user", "content": prompt},
			},
			"stream": true,
		},
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
