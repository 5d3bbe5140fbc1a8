package session

import (
	"errors"
	"fmt"
)

var (
	ErrConnectionTimeout = errors.New("voice connection timed out")
	ErrConnectionError   = errors.New("voice connection failed")
	ErrResolution        = errors.New("could not resolve a playable stream")
	ErrPlaybackRuntime   = errors.New("playback failed")
	ErrNoActiveSession   = errors.New("no active session")
	ErrTransportNotReady = errors.New("voice transport not ready")
)

// ErrStopped is returned by Enqueue when the session was stopped while its voice
// connection was still being set up.
var ErrStopped = fmt.Errorf("%w: stopped while connecting", ErrNoActiveSession)

// errSessionGone marks a session that was already torn down before a connection
// attempt began. Enqueue retries on a fresh session.
var errSessionGone = errors.New("session already torn down")
