package cmd

import (
	"context"
	"strings"
	"testing"
)

type stub struct {
	name    string
	aliases []string
	ran     []string
}

func (s *stub) Name() string        { return s.name }
func (s *stub) Description() string { return "stub " + s.name }
func (s *stub) Aliases() []string   { return s.aliases }

func (s *stub) Run(ctx context.Context, inv *Invocation) error {
	s.ran = append(s.ran, inv.Name)
	return nil
}

func TestRegistryLookupByAliasIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	play := &stub{name: "musica", aliases: []string{"m"}}
	r.MustRegister(play)
	r.MustRegister(&stub{name: "skip"})

	for _, key := range []string{"musica", "MUSICA", "m", "M"} {
		if got := r.Get(key); got != play {
			t.Errorf("Get(%q) = %v, want musica", key, got)
		}
	}
	if r.Get("nope") != nil {
		t.Error("Get of unknown name should be nil")
	}

	all := r.GetAll()
	if len(all) != 2 || all[0].Name() != "musica" || all[1].Name() != "skip" {
		t.Fatalf("GetAll listed aliases or lost order: %v", all)
	}
}

func TestRegistryRejectsClashes(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(&stub{name: "list", aliases: []string{"queue"}})

	err := r.Register(&stub{name: "queue"})
	if err == nil || !strings.Contains(err.Error(), "already taken") {
		t.Fatalf("expected clash error, got %v", err)
	}
	if r.Get("queue").Name() != "list" {
		t.Fatal("failed registration must not overwrite the existing alias")
	}
}

func TestMiddlewareOrderAndRoot(t *testing.T) {
	var trace []string
	mark := func(tag string) Middleware {
		return func(c Command) Command {
			return Wrap(c, func(ctx context.Context, inv *Invocation) error {
				trace = append(trace, tag)
				return c.Run(ctx, inv)
			})
		}
	}

	inner := &stub{name: "stop", aliases: []string{"parar"}}
	c := Apply(inner, mark("inner"), mark("outer"))

	if err := c.Run(context.Background(), &Invocation{Name: "stop"}); err != nil {
		t.Fatal(err)
	}
	if strings.Join(trace, ",") != "outer,inner" {
		t.Fatalf("trace = %v", trace)
	}
	if Root(c) != inner {
		t.Fatal("Root did not reach the inner command")
	}
	if got := AliasesOf(c); len(got) != 1 || got[0] != "parar" {
		t.Fatalf("AliasesOf through wrappers = %v", got)
	}
	if c.Name() != "stop" || c.Description() != "stub stop" {
		t.Fatal("wrapper must delegate identity")
	}
}
