package handler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/streamkit/tazos-engine/pkg/common"
	"github.com/streamkit/tazos-engine/pkg/game"
)

// Invocation is one parsed chat command. User is already normalized.
type Invocation struct {
	User      string
	Display   string
	Args      []string
	Moderator bool
}

// Arg returns the i-th argument or "".
func (inv Invocation) Arg(i int) string {
	if i < len(inv.Args) {
		return inv.Args[i]
	}
	return ""
}

// RunFunc executes a command.
type RunFunc func(ctx context.Context, scope *common.Scope, inv Invocation) (game.Reply, error)

// Command is a named chat command.
type Command struct {
	Name    string
	Aliases []string
	Usage   string
	// ModOnly commands are refused for regular viewers.
	ModOnly bool
	Run     RunFunc
}

// Registry manages available commands.
// It provides thread-safe registration and lookup by name or alias.
type Registry struct {
	commands map[string]*Command
	lookup   map[string]*Command
	mu       sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
		lookup:   make(map[string]*Command),
	}
}

// Register adds a command. Returns an error if its name or any alias is taken.
func (r *Registry) Register(cmd *Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{cmd.Name}, cmd.Aliases...)
	for i, k := range keys {
		keys[i] = strings.ToLower(k)
		if _, exists := r.lookup[keys[i]]; exists {
			return fmt.Errorf("command %s already registered", keys[i])
		}
	}
	r.commands[keys[0]] = cmd
	for _, k := range keys {
		r.lookup[k] = cmd
	}
	return nil
}

// Get returns a command by name or alias, or nil.
func (r *Registry) Get(name string) *Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lookup[strings.ToLower(name)]
}

// All returns every command sorted by name.
func (r *Registry) All() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Command, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.commands)
}
