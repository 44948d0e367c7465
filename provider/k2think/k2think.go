// Package k2think adapts the MBZUAI K2-Think guest chat API. The
// backend streams the full answer wrapped in <answer> tags and its
// reasoning in a details block, so the pipeline extracts the answer
// body and suppresses everything else.
package k2think

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
	providerName = "k2think"
	baseURL      = "https://www.k2think.ai"
	chatPath     = "/api/guest/chat/completions"
	defaultModel = "MBZUAI-IFM/K2-Think"

	defaultSystemPrompt = "You are a helpful assistant."
)

var models = []string{defaultModel}

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

// New builds the K2-Think provider.
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
			"Accept":         "*/*",
			"Origin":         baseURL,
			"Referer":        baseURL + "/guest",
			"Sec-Fetch-Dest": "empty",
			"Sec-Fetch-Mode": "cors",
			"Sec-Fetch-Site": "same-origin",
			"Priority":       "u=1, i",
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
		"stream": true,
		"model":  v.model,
		"messages": []map[string]string{
			{"role": "system", "content": v.systemPrompt},
			{"role": "user", "content": prompt},
		},
		"params": map[string]any{},
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
		ExtractRegexes: []string{
			`<answer>([\s\S]*?)<\/answer>`,
		},
		// Skip rules see frames with the data: prefix already
		// stripped, so [DONE] and empty-data markers arrive as bare
		// text here.
		SkipRegexes: []string{
			`^\s*$`,
			`^\s*\[DONE\]\s*$`,
			`^\s*\{\s*\}\s*$`,
			`<details type="reasoning"[^>]*>.*?<\/details>`,
		},
	}
}
