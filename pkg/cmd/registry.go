package cmd

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry stores commands by name and alias. It does not perform dispatch; each
// adapter looks up commands and invokes them with its own context.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	byKey    map[string]Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		byKey:    make(map[string]Command),
	}
}

// Register adds a command under its name and aliases. Lookups are case-insensitive.
// A name or alias that is already taken is an error and nothing is registered.
func (r *Registry) Register(c Command) error {
	keys := append([]string{c.Name()}, AliasesOf(c)...)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range keys {
		k = strings.ToLower(k)
		if k == "" {
			return fmt.Errorf("command %q has an empty name or alias", c.Name())
		}
		if prev, ok := r.byKey[k]; ok {
			return fmt.Errorf("command %q: %q is already taken by %q", c.Name(), k, prev.Name())
		}
	}
	for _, k := range keys {
		r.byKey[strings.ToLower(k)] = c
	}
	r.commands[c.Name()] = c
	return nil
}

// MustRegister is Register for setup code where a clash is a programming error.
func (r *Registry) MustRegister(c Command) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Get returns the command registered under name or alias, or nil.
func (r *Registry) Get(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byKey[strings.ToLower(name)]
}

// GetAll returns all registered commands, sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}
