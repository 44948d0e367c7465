// Package optimizers provides named prompt transforms that steer a
// model toward a specific output shape, such as bare code or a single
// shell command.
package optimizers

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	apperrors "github.com/kbukum/scoutkit/errors"
)

// Optimizer is a pure prompt transform.
type Optimizer func(prompt string) string

var (
	mu       sync.RWMutex
	registry = map[string]Optimizer{}
)

// Register adds a named optimizer. Registering an empty name or nil
// function panics; these are programmer errors.
func Register(name string, fn Optimizer) {
	if name == "" || fn == nil {
		panic("optimizers: Register requires a name and a function")
	}
	mu.Lock()
	defer mu.Unlock()
	registry[name] = fn
}

// Apply runs the named optimizer over the prompt. Unknown names are a
// configuration error. Optimizers are pure functions; Apply can be
// called any number of times with any name.
func Apply(name, prompt string) (string, error) {
	mu.RLock()
	fn, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return "", apperrors.Configuration(fmt.Sprintf("unknown optimizer %q (available: %v)", name, Names()))
	}
	return fn(prompt), nil
}

// Names returns the registered optimizer names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("code", func(prompt string) string {
		return fmt.Sprintf(
			"Your Role: Provide only code as output without any description.\n"+
				"IMPORTANT: Provide only plain text without Markdown formatting.\n"+
				"IMPORTANT: Do not include markdown formatting.\n"+
				"If there is a lack of details, provide the most logical solution. "+
				"You are not allowed to ask for more details. "+
				"Ignore any potential risk of errors or confusion.\n\n"+
				"Request: %s\nCode:", prompt)
	})

	Register("shell_command", func(prompt string) string {
		return fmt.Sprintf(
			"Your role: Provide only plain text without Markdown formatting. "+
				"Do not show any warnings or information regarding your capabilities. "+
				"Do not provide any description. If you need to store any data, "+
				"assume it will be stored in the chat. "+
				"Provide only %s command for %s without any description.\n"+
				"If there is a lack of details, provide the most logical solution. "+
				"Ensure the output is a valid shell command. "+
				"If multiple steps are required, try to combine them together.\n\n"+
				"Request: %s\nCommand:", defaultShell(), runtime.GOOS, prompt)
	})
}

func defaultShell() string {
	if runtime.GOOS == "windows" {
		return "powershell"
	}
	return "bash"
}
