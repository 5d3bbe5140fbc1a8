// Package cmd provides a transport-agnostic command core: a command is something
// with a name, description, and Run(ctx, invocation). How it is dispatched (chat
// prefix, CLI, HTTP) is defined by adapters that wrap this.
package cmd

import "context"

// Invocation carries what any command runner can pass: the name the command was
// called by, its arguments and an opaque payload. Adapters set Data to their own
// context (e.g. the chat message that triggered the command).
type Invocation struct {
	Name string
	Args []string
	Data any
}

// Command is the universal contract: identity plus execution. Permissions and
// transport-specific concerns stay in middleware and adapters.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// Aliased is implemented by commands reachable under extra names.
type Aliased interface {
	Aliases() []string
}

// AliasesOf returns the aliases of c, looking through any middleware wrappers.
func AliasesOf(c Command) []string {
	if a, ok := Root(c).(Aliased); ok {
		return a.Aliases()
	}
	return nil
}
