// Package gmi adapts the GMI Cloud chat backend. GMI exposes an
// OpenAI-style delta stream without a terminating [DONE] marker and
// additionally streams reasoning deltas on delta.reasoning_content.
package gmi

import (
	"net/http"
	"sync"

	"github.com/kbukum/scoutkit/conversation"
	"github.com/kbukum/scoutkit/fingerprint"
	"github.com/kbukum/scoutkit/httpclient"
	"github.com/kbukum/scoutkit/provider"
	"github.com/kbukum/scoutkit/sanitize"
)

const (
	providerName = "gmi"
	baseURL      = "https://console.gmicloud.ai"
	chatPath     = "/chat"
	defaultModel = "Qwen/Qwen3-235B-A22B-Instruct-2507-FP8"

	defaultSystemPrompt = "You are a helpful assistant."

	maxTokens        = 4096
	temperature      = 0.5
	topP             = 0.9
	topK             = 1
	frequencyPenalty = 0
	presencePenalty  = 0
)

var models = []string{
	"Qwen/Qwen3-235B-A22B-Instruct-2507-FP8",
	"Qwen/Qwen3-Next-80B-A3B-Instruct",
	"Qwen/Qwen3-30B-A3B",
	"deepseek-ai/DeepSeek-V3.1",
	"zai-org/GLM-4.5-Air-FP8",
	"zai-org/GLM-4.5-FP8",
	"zai-org/GLM-4.6",
}

func init() {
	provider.Register(providerName, New)
}

type vendor struct {
	model        string
	systemPrompt string
	browser      string

	mu       sync.Mutex
	identity fingerprint.Identity
}

// New builds the GMI Cloud provider. No API key is needed; the backend
// gates on browser-looking traffic instead.
func New(settings provider.Settings) (provider.Provider, error) {
	model, err := provider.ResolveModel(providerName, settings.Model, models, defaultModel)
	if err != nil {
		return nil, err
	}
	systemPrompt := settings.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	v := &vendor{
		model:        model,
		systemPrompt: systemPrompt,
		browser:      settings.Browser,
		identity:     fingerprint.Generate(settings.Browser),
	}

	httpClient, err := httpclient.New(httpclient.Config{
		Name:    providerName,
		BaseURL: baseURL,
		Timeout: settings.Timeout,
		Proxy:   settings.Proxy,
		Headers: map[string]string{
			"Accept":         "application/json, text/plain, */*",
			"Origin":         baseURL,
			"Sec-Fetch-Dest": "empty",
			"Sec-Fetch-Mode": "cors",
			"Sec-Fetch-Site": "same-origin",
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

func (v *vendor) RefreshIdentity() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.identity = fingerprint.Generate(v.browser)
}

func (v *vendor) BuildRequest(prompt string) (httpclient.Request, error) {
	v.mu.Lock()
	headers := v.identity.Headers()
	v.mu.Unlock()

	body := map[string]any{
		"temperature":       temperature,
		"max_tokens":        maxTokens,
		"top_k":             topK,
		"top_p":             topP,
		"frequency_penalty": frequencyPenalty,
		"presence_penalty":  presencePenalty,
		"stream":            true,
		"system_prompt":     v.systemPrompt,
		"model":             v.model,
		"messages": []map[string]string{
			{"role": "system", "content": v.systemPrompt},
			{"role": "user", "content": prompt},
		},
	}
	return httpclient.Request{
		Method:  http.MethodPost,
		Path:    chatPath,
		Headers: headers,
		Body:    body,
	}, nil
}

func (v *vendor) Pipeline() sanitize.Config {
	return sanitize.Config{
		IntroValue: "data:",
		ToJSON:     true,
		Extractor:  sanitize.ExtractorFunc(extract),
	}
}

// extract reads the OpenAI-style delta object, keeping content and
// reasoning_content as separate channels.
func extract(f sanitize.Frame) (sanitize.Chunk, bool) {
	obj := f.Object()
	if obj == nil {
		return sanitize.Chunk{}, false
	}
	choices, _ := obj["choices"].([]any)
	if len(choices) == 0 {
		return sanitize.Chunk{}, false
	}
	choice, _ := choices[0].(map[string]any)
	delta, _ := choice["delta"].(map[string]any)
	if delta == nil {
		return sanitize.Chunk{}, false
	}
	content, _ := delta["content"].(string)
	reasoning, _ := delta["reasoning_content"].(string)
	if content == "" && reasoning == "" {
		return sanitize.Chunk{}, false
	}
	return sanitize.Chunk{Text: content, Reasoning: reasoning}, true
}
