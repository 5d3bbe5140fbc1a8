package discord

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/suenala/internal/command/commandtest"
	"github.com/keshon/suenala/internal/music/session"
	"github.com/keshon/suenala/pkg/cmd"
	"github.com/rs/zerolog"
)

type sentMsg struct {
	channel string
	text    string
	embed   *discordgo.MessageEmbed
}

type fakeSender struct {
	mu  sync.Mutex
	out []sentMsg
}

func (f *fakeSender) SendText(channelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = append(f.out, sentMsg{channel: channelID, text: content})
	return nil
}

func (f *fakeSender) SendEmbed(channelID string, e *discordgo.MessageEmbed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = append(f.out, sentMsg{channel: channelID, embed: e})
	return nil
}

func (f *fakeSender) sent() []sentMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMsg(nil), f.out...)
}

func TestNotifierDeliversInOrder(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx)

	tr := session.Track{Title: "Oye", ReplyTo: "text-1", RequestedBy: "ana"}
	n.NowPlaying(tr)
	n.TrackFailed(tr, errors.New("boom"))
	n.TransportNotReady(tr)
	n.QueueFinished(tr)
	n.NowPlaying(session.Track{Title: "nowhere"})

	deadline := time.Now().Add(2 * time.Second)
	for len(sender.sent()) < 4 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	got := sender.sent()
	if len(got) != 4 {
		t.Fatalf("sent %d messages, want 4", len(got))
	}
	if got[0].embed == nil || got[0].embed.Title != "🎵 Suenalaaaa!" {
		t.Fatalf("first = %+v", got[0])
	}
	if got[1].text != msgTrackFailed || got[2].text != msgTransportNotReady || got[3].text != msgQueueFinished {
		t.Fatalf("texts = %q %q %q", got[1].text, got[2].text, got[3].text)
	}
	for _, m := range got {
		if m.channel != "text-1" {
			t.Fatalf("sent to %q", m.channel)
		}
	}
}

func TestNotifierDropsWhenFull(t *testing.T) {
	n := NewNotifier(&fakeSender{}, zerolog.Nop())
	for range outboxSize + 10 {
		n.QueueFinished(session.Track{ReplyTo: "text-1"})
	}
	if len(n.outbox) != outboxSize {
		t.Fatalf("outbox holds %d", len(n.outbox))
	}
}

type echo struct {
	got *cmd.Invocation
}

func (e *echo) Name() string        { return "list" }
func (e *echo) Description() string { return "echo" }
func (e *echo) Aliases() []string   { return []string{"queue"} }
func (e *echo) Run(ctx context.Context, inv *cmd.Invocation) error {
	e.got = inv
	return nil
}

func TestDispatch(t *testing.T) {
	reg := cmd.NewRegistry()
	c := &echo{}
	reg.MustRegister(c)
	b := &Bot{prefix: "!", commands: reg, log: zerolog.Nop()}
	fake := commandtest.NewBot()

	msg := func(content string) *discordgo.MessageCreate {
		return &discordgo.MessageCreate{Message: &discordgo.Message{
			Content: content, GuildID: "g", ChannelID: "c",
			Author: &discordgo.User{ID: "u", Username: "ana"},
		}}
	}

	if !b.dispatch(context.Background(), fake, msg("!QUEUE  uno dos")) {
		t.Fatal("alias was not dispatched")
	}
	if c.got.Name != "queue" || len(c.got.Args) != 2 || c.got.Args[1] != "dos" {
		t.Fatalf("invocation = %+v", c.got)
	}
	for _, content := range []string{"queue", "!nope", "hola !list"} {
		if b.dispatch(context.Background(), fake, msg(content)) {
			t.Fatalf("%q should not dispatch", content)
		}
	}
}

func TestWaitReady(t *testing.T) {
	ready := &voiceTransport{vc: &discordgo.VoiceConnection{Ready: true}}
	if err := ready.WaitReady(context.Background()); err != nil {
		t.Fatal(err)
	}

	vc := &discordgo.VoiceConnection{}
	late := &voiceTransport{vc: vc}
	go func() {
		time.Sleep(2 * readyPollInterval)
		vc.Lock()
		vc.Ready = true
		vc.Unlock()
	}()
	if err := late.WaitReady(context.Background()); err != nil {
		t.Fatal(err)
	}

	never := &voiceTransport{vc: &discordgo.VoiceConnection{}}
	ctx, cancel := context.WithTimeout(context.Background(), 3*readyPollInterval)
	defer cancel()
	if err := never.WaitReady(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
}

func TestVoiceTracksLiveTransports(t *testing.T) {
	v := newVoice(nil, zerolog.Nop())
	first := v.track("g", &discordgo.VoiceConnection{})
	if !v.lost("g") {
		t.Fatal("a live transport must be reported")
	}

	second := v.track("g", &discordgo.VoiceConnection{})
	first.onDestroy()
	if !v.lost("g") {
		t.Fatal("destroying a replaced transport must not forget the new one")
	}
	second.onDestroy()
	if v.lost("g") {
		t.Fatal("destroyed transport still tracked")
	}
}
