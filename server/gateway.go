package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/scoutkit/conversation"
	apperrors "github.com/kbukum/scoutkit/errors"
	"github.com/kbukum/scoutkit/logger"
	"github.com/kbukum/scoutkit/observability"
	"github.com/kbukum/scoutkit/provider"
	"github.com/kbukum/scoutkit/util"
	"github.com/kbukum/scoutkit/validation"
	"github.com/kbukum/scoutkit/version"
)

// Gateway routes OpenAI-shaped requests onto registered providers.
// Providers are constructed lazily per provider/model pair and reused
// across requests; gateway conversations are stateless, so history
// tracking is disabled and clients supply full context per call.
type Gateway struct {
	cfg     Config
	log     *logger.Logger
	metrics *observability.Metrics

	mu    sync.Mutex
	cache map[string]provider.Provider
}

// GatewayOption adjusts a Gateway at construction.
type GatewayOption func(*Gateway)

// WithMetrics enables request metric recording.
func WithMetrics(m *observability.Metrics) GatewayOption {
	return func(g *Gateway) { g.metrics = m }
}

// NewGateway creates the request router for the configured providers.
func NewGateway(cfg Config, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		cfg:   cfg,
		log:   logger.WithComponent("gateway"),
		cache: make(map[string]provider.Provider),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// resolve maps a request model string onto a provider instance. The
// form is "<provider>/<model>"; a bare provider name selects its
// default model. Vendor model ids may themselves contain slashes, so
// only the first segment routes.
func (g *Gateway) resolve(model string) (provider.Provider, error) {
	name := model
	rest := ""
	if i := strings.IndexByte(model, '/'); i >= 0 {
		name, rest = model[:i], model[i+1:]
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.cache[model]; ok {
		return p, nil
	}

	pc := g.cfg.Providers[name]
	p, err := provider.Open(name, provider.Settings{
		Model:        rest,
		APIKey:       pc.APIKey,
		Proxy:        pc.Proxy,
		SystemPrompt: pc.SystemPrompt,
		Browser:      pc.Browser,
		Conversation: conversation.Config{Enabled: false},
	})
	if err != nil {
		return nil, err
	}
	g.cache[model] = p
	return p, nil
}

// ChatCompletions handles POST /v1/chat/completions.
func (g *Gateway) ChatCompletions(c *gin.Context) {
	var req ChatCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, apperrors.InvalidInput("malformed request body"))
		return
	}
	v := validation.New().
		Required("model", req.Model).
		Custom(len(req.Messages) > 0, "messages", "must not be empty")
	if appErr := v.Validate(); appErr != nil {
		RespondWithError(c, appErr)
		return
	}

	p, err := g.resolve(req.Model)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	prompt := flattenPrompt(req.Messages)
	var opts []provider.AskOption
	if req.Optimizer != "" {
		opts = append(opts, provider.WithOptimizer(req.Optimizer))
	}

	if req.Stream {
		g.streamCompletion(c, p, req, prompt, opts)
		return
	}

	text, err := p.Ask(c.Request.Context(), prompt, opts...)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ChatCompletion{
		ID:      completionID(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []CompletionChoice{{
			Message:      ChatMessage{Role: "assistant", Content: text},
			FinishReason: "stop",
		}},
		Usage: estimateUsage(prompt, text),
	})
}

// streamCompletion writes the completion as SSE chunks terminated by
// a finish frame and the [DONE] sentinel.
func (g *Gateway) streamCompletion(c *gin.Context, p provider.Provider, req ChatCompletionRequest, prompt string, opts []provider.AskOption) {
	stream, err := p.Stream(c.Request.Context(), prompt, opts...)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	defer stream.Close()

	h := c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	id := completionID()
	created := time.Now().Unix()
	emit := func(chunk ChatCompletionChunk) bool {
		payload, err := json.Marshal(chunk)
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
			return false
		}
		c.Writer.Flush()
		return true
	}

	emit(ChatCompletionChunk{
		ID: id, Object: "chat.completion.chunk", Created: created, Model: req.Model,
		Choices: []ChunkChoice{{Delta: Delta{Role: "assistant"}}},
	})

	ctx := c.Request.Context()
	for {
		chunk, ok, err := stream.Next(ctx)
		if err != nil {
			// Headers are gone; all we can do is log and stop.
			g.log.Warn("Stream aborted", map[string]any{
				"model": req.Model,
				"error": err.Error(),
			})
			return
		}
		if !ok {
			break
		}
		if !emit(ChatCompletionChunk{
			ID: id, Object: "chat.completion.chunk", Created: created, Model: req.Model,
			Choices: []ChunkChoice{{Delta: Delta{
				Content:          chunk.Text,
				ReasoningContent: chunk.Reasoning,
			}}},
		}) {
			return
		}
	}

	emit(ChatCompletionChunk{
		ID: id, Object: "chat.completion.chunk", Created: created, Model: req.Model,
		Choices: []ChunkChoice{{Delta: Delta{}, FinishReason: util.Ptr("stop")}},
	})
	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	c.Writer.Flush()
}

// Models handles GET /v1/models. Providers whose construction fails
// (e.g. missing API key) are listed by name only.
func (g *Gateway) Models(c *gin.Context) {
	names := provider.Names()
	list := ModelList{Object: "list", Data: make([]ModelInfo, 0, len(names))}
	for _, name := range names {
		p, err := g.resolve(name)
		if err != nil {
			list.Data = append(list.Data, ModelInfo{ID: name, Object: "model", OwnedBy: name})
			continue
		}
		models := p.Models()
		sort.Strings(models)
		for _, m := range models {
			list.Data = append(list.Data, ModelInfo{
				ID:      name + "/" + m,
				Object:  "model",
				OwnedBy: name,
			})
		}
	}
	c.JSON(http.StatusOK, list)
}

// Health handles GET /health.
func (g *Gateway) Health(c *gin.Context) {
	sh := observability.NewServiceHealth("scoutkit", version.Version)

	registered := provider.Names()
	status := observability.HealthStatusUp
	if len(registered) == 0 {
		status = observability.HealthStatusDown
	}
	sh.AddComponent(observability.Health{
		Name:    "providers",
		Status:  status,
		Details: map[string]string{"registered": strconv.Itoa(len(registered))},
	})

	code := http.StatusOK
	if sh.Status == observability.HealthStatusDown {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, sh)
}

// flattenPrompt folds an OpenAI message list into the single prompt
// string native providers expect.
func flattenPrompt(msgs []ChatMessage) string {
	if len(msgs) == 1 && msgs[0].Role == "user" {
		return msgs[0].Content
	}
	var b strings.Builder
	for _, m := range msgs {
		switch m.Role {
		case "system":
			b.WriteString(m.Content)
			b.WriteString("\n\n")
		case "assistant":
			b.WriteString("Assistant: ")
			b.WriteString(m.Content)
			b.WriteString("\n")
		default:
			b.WriteString("User: ")
			b.WriteString(m.Content)
			b.WriteString("\n")
		}
	}
	b.WriteString("Assistant:")
	return b.String()
}

func completionID() string {
	return "chatcmpl-" + uuid.NewString()
}

func estimateUsage(prompt, completion string) Usage {
	p := len(strings.Fields(prompt))
	c := len(strings.Fields(completion))
	return Usage{PromptTokens: p, CompletionTokens: c, TotalTokens: p + c}
}
