package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func reset(t *testing.T, version, commit, date string) {
	t.Helper()
	oldV, oldC, oldD := Version, Commit, Date
	Version, Commit, Date = version, commit, date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })
}

func TestFill(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.4.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-03-01T10:00:00Z"},
		},
	}

	t.Run("unset values", func(t *testing.T) {
		reset(t, devVersion, noCommit, noDate)
		fill(bi, true)
		if Version != "v0.4.1" || Commit != "0123456789ab" || Date != "2026-03-01T10:00:00Z" {
			t.Errorf("fill() = %s", String())
		}
	})

	t.Run("ldflags win", func(t *testing.T) {
		reset(t, "v1.0.0", "abc", "today")
		fill(bi, true)
		if String() != "v1.0.0 (abc, today)" {
			t.Errorf("fill() = %s", String())
		}
	})

	t.Run("devel module", func(t *testing.T) {
		reset(t, devVersion, noCommit, noDate)
		fill(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true)
		if Version != devVersion {
			t.Errorf("Version = %q, want dev", Version)
		}
	})
}

func TestCacheScope(t *testing.T) {
	reset(t, "v1.2.0", "abc", noDate)
	if got := CacheScope(); got != "v1.2.0:" {
		t.Errorf("CacheScope() = %q", got)
	}

	reset(t, devVersion, "abc", noDate)
	if got := CacheScope(); got != "dev-abc:" {
		t.Errorf("CacheScope() = %q", got)
	}
}

func TestTemplate(t *testing.T) {
	reset(t, "v1.2.0", "abc", "today")
	if !strings.Contains(Template(), "v1.2.0") || !strings.Contains(Template(), "commit: abc") {
		t.Errorf("Template() = %q", Template())
	}
}
