package version

import "testing"

func TestString(t *testing.T) {
	oldDate, oldCommit, oldGo := BuildDate, Commit, GoVersion
	t.Cleanup(func() { BuildDate, Commit, GoVersion = oldDate, oldCommit, oldGo })

	BuildDate, Commit, GoVersion = "", "", ""
	if got := String(); got != "suenala" {
		t.Errorf("bare = %q", got)
	}

	BuildDate, Commit, GoVersion = "2026-10-19T08:00:00Z", "abc1234", "go1.24.2"
	if got := String(); got != "suenala (abc1234, 2026-10-19, go1.24.2)" {
		t.Errorf("full = %q", got)
	}

	BuildDate = "yesterday"
	if !Built().IsZero() {
		t.Error("unparsable build date should be ignored")
	}
	if got := String(); got != "suenala (abc1234, go1.24.2)" {
		t.Errorf("bad date = %q", got)
	}
}
