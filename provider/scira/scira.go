// Package scira adapts the Scira search chat backend. Scira streams
// typed SSE events (reasoning-delta, text-delta, done) and rejects
// clients that do not look like a browser, so the vendor carries a
// generated browser identity and swaps it when the upstream starts
// returning 403 or 429.
package scira

import (
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/scoutkit/conversation"
	"github.com/kbukum/scoutkit/fingerprint"
	"github.com/kbukum/scoutkit/httpclient"
	"github.com/kbukum/scoutkit/provider"
	"github.com/kbukum/scoutkit/sanitize"
)

const (
	providerName = "scira"
	baseURL      = "https://scira.ai"
	searchPath   = "/api/search"
	defaultModel = "grok-3-mini"
)

// modelAliases maps public model names to Scira's internal identifiers.
// Both sides are accepted as model settings.
var modelAliases = map[string]string{
	"grok-3-mini":       "scira-default",
	"llama-4-maverick":  "scira-llama-4",
	"qwen3-4b":          "scira-qwen-4b",
	"qwen3-32b":         "scira-qwen-32b",
	"qwen3-4b-thinking": "scira-qwen-4b-thinking",
}

func modelNames() []string {
	names := make([]string, 0, 2*len(modelAliases))
	for alias, internal := range modelAliases {
		names = append(names, alias, internal)
	}
	return names
}

func init() {
	provider.Register(providerName, New)
}

type vendor struct {
	model   string // internal identifier sent upstream
	public  string // resolved name as configured
	chatID  string
	userID  string
	browser string

	mu       sync.Mutex
	identity fingerprint.Identity
}

// New builds the Scira provider.
func New(settings provider.Settings) (provider.Provider, error) {
	model, err := provider.ResolveModel(providerName, settings.Model, modelNames(), defaultModel)
	if err != nil {
		return nil, err
	}
	internal := model
	if mapped, ok := modelAliases[model]; ok {
		internal = mapped
	}

	v := &vendor{
		model:    internal,
		public:   model,
		chatID:   uuid.NewString(),
		userID:   "user_" + strings.ToUpper(uuid.NewString()[:8]),
		browser:  settings.Browser,
		identity: fingerprint.Generate(settings.Browser),
	}

	httpClient, err := httpclient.New(httpclient.Config{
		Name:    providerName,
		BaseURL: baseURL,
		Timeout: settings.Timeout,
		Proxy:   settings.Proxy,
		Headers: map[string]string{
			"Accept":   "*/*",
			"Origin":   baseURL,
			"Referer":  baseURL + "/",
			"DNT":      "1",
			"Priority": "u=1, i",
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
func (v *vendor) Models() []string { return modelNames() }
func (v *vendor) Model() string    { return v.public }

// RefreshIdentity swaps the browser fingerprint. The shared client
// calls this once when the upstream answers 403 or 429.
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
		"id": v.chatID,
		"messages": []map[string]any{{
			"role":    "user",
			"content": prompt,
			"parts":   []map[string]string{{"type": "text", "text": prompt}},
			"id":      uuid.NewString()[:16],
		}},
		"model":                       v.model,
		"group":                       "chat",
		"user_id":                     v.userID,
		"timezone":                    "Asia/Calcutta",
		"isCustomInstructionsEnabled": false,
		"searchProvider":              "parallel",
	}
	return httpclient.Request{
		Method:  http.MethodPost,
		Path:    searchPath,
		Headers: headers,
		Body:    body,
	}, nil
}

func (v *vendor) Pipeline() sanitize.Config {
	return sanitize.Config{
		IntroValue:  "data:",
		ToJSON:      true,
		SkipMarkers: []string{"[DONE]"},
		Extractor:   sanitize.ExtractorFunc(extract),
	}
}

// extract maps Scira's typed events onto the two content channels.
// reasoning-start/end markers carry no text and are dropped; consumers
// see the transition as the Reasoning field going non-empty.
func extract(f sanitize.Frame) (sanitize.Chunk, bool) {
	obj := f.Object()
	if obj == nil {
		return sanitize.Chunk{}, false
	}
	delta, _ := obj["delta"].(string)
	switch obj["type"] {
	case "text-delta":
		return sanitize.Chunk{Text: delta}, delta != ""
	case "reasoning-delta":
		return sanitize.Chunk{Reasoning: delta}, delta != ""
	default:
		return sanitize.Chunk{}, false
	}
}
