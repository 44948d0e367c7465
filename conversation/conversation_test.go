package conversation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDisabledPassesPromptThrough(t *testing.T) {
	c, err := New(Config{Enabled: false})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.GenCompletePrompt("What is Go?"); got != "What is Go?" {
		t.Errorf("prompt = %q, want unchanged", got)
	}
	c.UpdateChatHistory("What is Go?", "A language.")
	if c.History() != "" {
		t.Error("disabled conversation should not record history")
	}
}

func TestGenCompletePromptComposition(t *testing.T) {
	c, err := New(Config{Enabled: true, Intro: "Be helpful."})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first := c.GenCompletePrompt("Hi")
	want := "Be helpful.\nUser : Hi\nLLM :"
	if first != want {
		t.Errorf("first prompt = %q, want %q", first, want)
	}

	c.UpdateChatHistory("Hi", "Hello!")
	second := c.GenCompletePrompt("How are you?")
	want = "Be helpful.\nUser : Hi\nLLM : Hello!\nUser : How are you?\nLLM :"
	if second != want {
		t.Errorf("second prompt = %q, want %q", second, want)
	}
}

func TestTrimCutsAtTurnBoundary(t *testing.T) {
	c, err := New(Config{Enabled: true, Intro: "I.", HistoryOffset: 80})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 10; i++ {
		c.UpdateChatHistory("question number "+strings.Repeat("x", i), "answer")
	}

	prompt := c.GenCompletePrompt("final")
	if len(prompt) > len("I.")+80+len("... ") {
		t.Errorf("prompt length %d exceeds offset budget", len(prompt))
	}
	if !strings.HasPrefix(prompt, "I.... \nUser : ") {
		t.Errorf("trimmed prompt should resume at a turn boundary, got %q", prompt[:30])
	}
	if !strings.HasSuffix(prompt, "\nUser : final\nLLM :") {
		t.Errorf("prompt should end with the open turn, got %q", prompt)
	}
}

func TestTrimIntroLongerThanOffset(t *testing.T) {
	c, err := New(Config{Enabled: true, Intro: strings.Repeat("x", 200), HistoryOffset: 100})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// The intro alone exceeds the offset, so the history window
	// degrades to empty rather than slicing out of range.
	prompt := c.GenCompletePrompt("hello")
	if want := strings.Repeat("x", 200) + "... "; prompt != want {
		t.Errorf("prompt = %q, want intro plus empty trimmed window", prompt)
	}

	c.UpdateChatHistory("hello", "hi")
	prompt = c.GenCompletePrompt("again")
	if !strings.HasPrefix(prompt, strings.Repeat("x", 200)+"... ") {
		t.Errorf("prompt should keep the intro with an emptied window, got %q", prompt[:20])
	}
}

func TestTrimDisabled(t *testing.T) {
	c, err := New(Config{Enabled: true, Intro: "I.", HistoryOffset: -1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 50; i++ {
		c.UpdateChatHistory("a long question to inflate history", "a long answer to inflate history")
	}
	prompt := c.GenCompletePrompt("final")
	if !strings.Contains(prompt, "a long question") {
		t.Error("negative offset should keep full history")
	}
	if strings.Contains(prompt, "... ") {
		t.Error("negative offset should never trim")
	}
}

func TestFilePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")

	c, err := New(Config{Enabled: true, Filepath: path, UpdateFile: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.UpdateChatHistory("Hi", "Hello!")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read history file: %v", err)
	}
	if string(data) != "\nUser : Hi\nLLM : Hello!" {
		t.Errorf("file content = %q", data)
	}

	// A fresh conversation over the same file resumes the history.
	c2, err := New(Config{Enabled: true, Filepath: path, UpdateFile: true})
	if err != nil {
		t.Fatalf("New (reload): %v", err)
	}
	if c2.History() != "\nUser : Hi\nLLM : Hello!" {
		t.Errorf("reloaded history = %q", c2.History())
	}
}

func TestFileCreationError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "history.txt")
	if _, err := New(Config{Enabled: true, Filepath: path}); err == nil {
		t.Error("expected construction error for uncreatable history file")
	}
}

func TestUpdateFileDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")
	c, err := New(Config{Enabled: true, Filepath: path, UpdateFile: false})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.UpdateChatHistory("Hi", "Hello!")

	data, _ := os.ReadFile(path)
	if len(data) != 0 {
		t.Errorf("file should stay empty when UpdateFile is false, got %q", data)
	}
	if c.History() == "" {
		t.Error("in-memory history should still update")
	}
}

func TestReset(t *testing.T) {
	c, _ := New(Config{Enabled: true})
	c.UpdateChatHistory("a", "b")
	c.Reset()
	if c.History() != "" {
		t.Error("Reset should clear history")
	}
}
