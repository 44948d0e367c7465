// Package turboseek adapts the TurboSeek answer API. TurboSeek streams
// SSE frames carrying a "text" field whose value is HTML-flavored, so
// the extractor strips tags and entities before yielding content.
package turboseek

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/kbukum/scoutkit/conversation"
	"github.com/kbukum/scoutkit/httpclient"
	"github.com/kbukum/scoutkit/provider"
	"github.com/kbukum/scoutkit/sanitize"
)

const (
	providerName = "turboseek"
	baseURL      = "https://www.turboseek.io"
	answerPath   = "/api/getAnswer"
	defaultModel = "Llama 3.1 70B"
)

var models = []string{defaultModel}

func init() {
	provider.Register(providerName, New)
}

type vendor struct {
	model string
}

// New builds the TurboSeek provider.
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
			"Accept":  "*/*",
			"Origin":  baseURL,
			"Referer": baseURL + "/",
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
	return httpclient.Request{
		Method: http.MethodPost,
		Path:   answerPath,
		Body: map[string]any{
			"question": prompt,
			"sources":  []any{},
		},
	}, nil
}

func (v *vendor) Pipeline() sanitize.Config {
	return sanitize.Config{
		IntroValue: "data:",
		ToJSON:     true,
		SkipRegexes: []string{
			`<script[^>]*>.*?</script>`,
			`<style[^>]*>.*?</style>`,
		},
		Extractor: sanitize.ExtractorFunc(extract),
	}
}

var (
	tagPattern    = regexp.MustCompile(`<[^>]+>`)
	entityPattern = regexp.MustCompile(`&[^;]+;`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// extract reads the frame's "text" field and strips HTML leftovers.
func extract(f sanitize.Frame) (sanitize.Chunk, bool) {
	obj := f.Object()
	if obj == nil {
		return sanitize.Chunk{}, false
	}
	text, _ := obj["text"].(string)
	cleaned := stripHTML(text)
	if cleaned == "" {
		return sanitize.Chunk{}, false
	}
	return sanitize.Chunk{Text: cleaned}, true
}

// stripHTML removes tags, replaces entities with spaces, and collapses
// runs of whitespace.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	s = tagPattern.ReplaceAllString(s, "")
	s = entityPattern.ReplaceAllString(s, " ")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
