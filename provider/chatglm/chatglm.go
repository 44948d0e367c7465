// Package chatglm adapts the Z.AI GLM chat backend. The backend hands
// out a guest bearer token on /api/v1/auths/ and a session cookie on
// the landing page; both are fetched lazily before the first chat
// request and reused for the life of the provider.
package chatglm

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/scoutkit/conversation"
	apperrors "github.com/kbukum/scoutkit/errors"
	"github.com/kbukum/scoutkit/httpclient"
	"github.com/kbukum/scoutkit/provider"
	"github.com/kbukum/scoutkit/sanitize"
)

const (
	providerName = "chatglm"
	baseURL      = "https://chat.z.ai"
	chatPath     = "/api/chat/completions"
	authPath     = "/api/v1/auths/"
	defaultModel = "0727-106B-API"

	feVersion   = "prod-fe-1.0.70"
	authTimeout = 15 * time.Second
)

var models = []string{
	"0727-106B-API",
	"0727-360B-API",
}

func init() {
	provider.Register(providerName, New)
}

type vendor struct {
	model string
	http  *httpclient.Client

	mu     sync.Mutex
	token  string
	cookie string
}

// New builds the Z.AI GLM provider.
func New(settings provider.Settings) (provider.Provider, error) {
	model, err := provider.ResolveModel(providerName, settings.Model, models, defaultModel)
	if err != nil {
		return nil, err
	}

	httpClient, err := httpclient.New(httpclient.Config{
		Name:    providerName,
		BaseURL: baseURL,
		Timeout: settings.Timeout,
		Proxy:   settings.Proxy,
		Headers: map[string]string{
			"Accept":          "text/event-stream",
			"Accept-Language": "en-US,en;q=0.9",
			"App-Name":        "chatglm",
			"Origin":          baseURL,
			"X-App-Platform":  "pc",
			"X-App-Version":   "0.0.1",
		},
	})
	if err != nil {
		return nil, err
	}
	v := &vendor{model: model, http: httpClient}

	conv, err := conversation.New(settings.Conversation)
	if err != nil {
		return nil, err
	}
	return provider.NewClient(v, httpClient, conv), nil
}

func (v *vendor) Name() string     { return providerName }
func (v *vendor) Models() []string { return append([]string(nil), models...) }
func (v *vendor) Model() string    { return v.model }

// session returns the cached guest token and cookie, fetching them on
// first use.
func (v *vendor) session() (token, cookie string, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.token != "" {
		return v.token, v.cookie, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	resp, err := v.http.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: authPath})
	if err != nil {
		return "", "", err
	}
	var auth struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body, &auth); err != nil || auth.Token == "" {
		return "", "", apperrors.FailedGeneration(providerName, err)
	}

	landing, err := v.http.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/"})
	if err == nil {
		v.cookie = landing.Headers["Set-Cookie"]
	}
	v.token = auth.Token
	return v.token, v.cookie, nil
}

func (v *vendor) BuildRequest(prompt string) (httpclient.Request, error) {
	token, cookie, err := v.session()
	if err != nil {
		return httpclient.Request{}, err
	}

	headers := map[string]string{
		"Authorization": "Bearer " + token,
		"x-fe-version":  feVersion,
	}
	if cookie != "" {
		headers["Cookie"] = cookie
	}

	body := map[string]any{
		"stream": true,
		"model":  v.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"params": map[string]any{},
		"features": map[string]any{
			"image_generation": false,
			"web_search":       false,
			"auto_web_search":  false,
			"preview_mode":     true,
			"flags":            []any{},
			"features": []map[string]string{
				{"type": "mcp", "server": "vibe-coding", "status": "hidden"},
				{"type": "mcp", "server": "ppt-maker", "status": "hidden"},
				{"type": "mcp", "server": "image-search", "status": "hidden"},
			},
			"enable_thinking": true,
		},
		"actions": []any{},
		"tags":    []any{},
		"chat_id": "local",
		"id":      uuid.NewString(),
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
		ExtractRegexes: []string{
			`"delta_content"\s*:\s*"((?:[^"\\]|\\.)*)"`,
			`"edit_content"\s*:\s*"((?:[^"\\]|\\.)*)"`,
		},
		SkipRegexes: []string{
			`<details[^>]*>.*?</details>`,
			`<summary>.*?</summary>`,
			`<[^>]+>`,
			`^\s*$`,
		},
	}
}
