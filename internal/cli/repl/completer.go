package repl

import (
	"sort"
	"strings"
)

// Commands is the bil command tree offered by the shell.
var Commands = []string{
	"project", "project list", "project get", "project history", "project add", "project rename", "project delete",
	"group", "group list", "group add", "group rename", "group delete", "group use",
	"payment", "payment list", "payment add", "payment update", "payment delete",
	"file", "file upload", "file get", "file remove",
	"config", "config show", "config set", "config path",
	"system", "system version", "system metrics", "system ping", "system context",
	"help", "history", "exit", "quit",
}

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over the given commands, or over
// Commands when none are given.
func NewCompleter(commands ...string) *Completer {
	if len(commands) == 0 {
		commands = Commands
	}
	return &Completer{commands: commands}
}

// Complete returns completion suggestions for the given prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Known reports whether word is a top-level command.
func (c *Completer) Known(word string) bool {
	for _, cmd := range c.commands {
		if cmd == word {
			return true
		}
	}
	return false
}

// Suggest returns the top-level commands starting with word, sorted.
func (c *Completer) Suggest(word string) []string {
	var out []string
	for _, cmd := range c.commands {
		if strings.Contains(cmd, " ") {
			continue
		}
		if word != "" && strings.HasPrefix(cmd, word) {
			out = append(out, cmd)
		}
	}
	sort.Strings(out)
	return out
}
