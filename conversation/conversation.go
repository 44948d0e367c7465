// Package conversation maintains plain-text chat history for providers:
// prompt composition with an intro, character-budget trimming at turn
// boundaries, and optional file persistence.
package conversation

import (
	"fmt"
	"os"
	"strings"
	"sync"

	apperrors "github.com/kbukum/scoutkit/errors"
	"github.com/kbukum/scoutkit/logger"
)

// DefaultIntro is the intro text used when none is configured.
const DefaultIntro = "You're a Large Language Model for chatting with people. Assume the role of the LLM and give your response."

const (
	defaultHistoryOffset = 10250
	turnBoundary         = "\nUser : "
)

// Config configures a Conversation.
type Config struct {
	// Enabled turns history tracking on. When false, GenCompletePrompt
	// passes prompts through untouched and UpdateChatHistory is a no-op.
	Enabled bool

	// Intro is the text prepended to every composed prompt. Defaults
	// to DefaultIntro.
	Intro string

	// HistoryOffset is the maximum number of characters of intro plus
	// history kept when composing a prompt. Older turns are trimmed at
	// a turn boundary. Zero or negative disables trimming. Defaults to
	// 10250.
	HistoryOffset int

	// Filepath enables persistence: history is loaded from this file
	// on open and appended on every update.
	Filepath string

	// UpdateFile controls whether updates are written back to
	// Filepath. Defaults to true when Filepath is set.
	UpdateFile bool
}

// Conversation tracks the chat history of one session. Safe for
// concurrent use.
type Conversation struct {
	cfg Config
	log *logger.Logger

	mu      sync.Mutex
	history string
}

// New creates a Conversation. When a Filepath is configured, existing
// history is loaded from it; an unreadable or uncreatable file is a
// construction error. Later write failures are logged, not raised.
func New(cfg Config) (*Conversation, error) {
	if cfg.Intro == "" {
		cfg.Intro = DefaultIntro
	}
	if cfg.HistoryOffset == 0 {
		cfg.HistoryOffset = defaultHistoryOffset
	}

	c := &Conversation{
		cfg: cfg,
		log: logger.WithComponent("conversation"),
	}

	if cfg.Enabled && cfg.Filepath != "" {
		if err := c.loadFile(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// GenCompletePrompt composes the full prompt sent upstream: intro,
// trimmed history, and the new user turn with an open LLM slot. When
// the conversation is disabled the prompt is returned unchanged.
func (c *Conversation) GenCompletePrompt(prompt string) string {
	if !c.cfg.Enabled {
		return prompt
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	pending := c.history + fmt.Sprintf("\nUser : %s\nLLM :", prompt)
	return c.cfg.Intro + c.trim(pending)
}

// UpdateChatHistory appends a completed turn. Called after a response
// finishes, including with partial text when a stream was interrupted.
func (c *Conversation) UpdateChatHistory(prompt, response string) {
	if !c.cfg.Enabled {
		return
	}

	turn := fmt.Sprintf("\nUser : %s\nLLM : %s", prompt, response)

	c.mu.Lock()
	c.history += turn
	c.mu.Unlock()

	if c.cfg.Filepath != "" && c.cfg.UpdateFile {
		if err := c.appendFile(turn); err != nil {
			c.log.WithError(err).Warn("failed to persist chat history",
				logger.Fields(logger.FieldURL, c.cfg.Filepath))
		}
	}
}

// History returns the accumulated history text.
func (c *Conversation) History() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history
}

// Reset clears the in-memory history. The persistence file is left as
// is.
func (c *Conversation) Reset() {
	c.mu.Lock()
	c.history = ""
	c.mu.Unlock()
}

// trim drops the oldest turns until intro plus history fits the
// configured offset, cutting forward to a turn boundary so a partial
// turn never leads the window. Caller must hold mu.
func (c *Conversation) trim(history string) string {
	offset := c.cfg.HistoryOffset
	if offset <= 0 {
		return history
	}
	total := len(c.cfg.Intro) + len(history)
	if total <= offset {
		return history
	}

	// An intro longer than the offset pushes the cut past the end of
	// history; clamp so the window degrades to empty instead of
	// slicing out of range.
	cut := total - offset
	if cut > len(history) {
		cut = len(history)
	}
	truncated := history[cut:]
	if idx := strings.Index(truncated, turnBoundary); idx >= 0 {
		truncated = truncated[idx:]
	}
	return "... " + truncated
}

func (c *Conversation) loadFile() error {
	data, err := os.ReadFile(c.cfg.Filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// Create so later appends have a target.
			f, createErr := os.OpenFile(c.cfg.Filepath, os.O_CREATE|os.O_WRONLY, 0o644)
			if createErr != nil {
				return apperrors.Configuration(fmt.Sprintf("cannot create history file %s", c.cfg.Filepath)).WithCause(createErr)
			}
			return f.Close()
		}
		return apperrors.Configuration(fmt.Sprintf("cannot read history file %s", c.cfg.Filepath)).WithCause(err)
	}
	c.history = string(data)
	return nil
}

func (c *Conversation) appendFile(turn string) error {
	f, err := os.OpenFile(c.cfg.Filepath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = f.WriteString(turn)
	return err
}
