package session

import "github.com/keshon/suenala/pkg/util"

// Track is one queued playback request. It is never mutated after creation.
type Track struct {
	Title       string
	URL         string
	Duration    string // display form, util.UnknownDuration when not known
	Thumbnail   string
	RequestedBy string
	ReplyTo     string // text channel that receives notifications for this track
	Source      string
	Parsers     []string
}

// DisplayDuration returns Duration or util.UnknownDuration when it is empty.
func (t Track) DisplayDuration() string {
	if t.Duration == "" {
		return util.UnknownDuration
	}
	return t.Duration
}

// State is the lifecycle state of a Session.
type State int

const (
	StateIdle State = iota
	StateResolving
	StatePlaying
	StateRetrying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StatePlaying:
		return "playing"
	case StateRetrying:
		return "retrying"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only copy of a session's state. Queue[0] is the current track.
type Snapshot struct {
	GuildID   string
	State     State
	Queue     []Track
	Connected bool
}

// Current returns the head of the queue.
func (s Snapshot) Current() (Track, bool) {
	if len(s.Queue) == 0 {
		return Track{}, false
	}
	return s.Queue[0], true
}

// Upcoming returns the tracks after the head.
func (s Snapshot) Upcoming() []Track {
	if len(s.Queue) < 2 {
		return nil
	}
	return s.Queue[1:]
}
