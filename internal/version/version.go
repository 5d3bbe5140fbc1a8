// Package version holds build metadata. BuildDate and Commit are set at link time:
//
//	go build -ldflags "-X github.com/keshon/suenala/internal/version.BuildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ) -X github.com/keshon/suenala/internal/version.Commit=$(git rev-parse --short HEAD)" ./cmd/discord
package version

import (
	"runtime"
	"strings"
	"time"
)

var (
	AppName        = "suenala"
	AppDescription = "Bot de música y frases diarias para Discord"
	BuildDate      = ""
	Commit         = ""
	GoVersion      = runtime.Version()
)

// Built returns the parsed BuildDate, or the zero time when it was not set.
func Built() time.Time {
	if BuildDate == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, BuildDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// String renders "suenala (abc1234, 2026-10-19, go1.24.2)", leaving out unknown parts.
func String() string {
	parts := make([]string, 0, 3)
	if Commit != "" {
		parts = append(parts, Commit)
	}
	if t := Built(); !t.IsZero() {
		parts = append(parts, t.Format("2006-01-02"))
	}
	if GoVersion != "" {
		parts = append(parts, GoVersion)
	}
	if len(parts) == 0 {
		return AppName
	}
	return AppName + " (" + strings.Join(parts, ", ") + ")"
}
