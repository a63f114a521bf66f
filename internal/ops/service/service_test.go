package service

import (
	"strings"
	"testing"

	"github.com/frgrisk/tidemark/internal/tideerr"
)

func withFakeExecutable(t *testing.T, path string) {
	t.Helper()
	original := currentExecutable
	currentExecutable = func() (string, error) { return path, nil }
	t.Cleanup(func() { currentExecutable = original })
}

func TestPlanService_DefaultUnitNameIsStableForSamePath(t *testing.T) {
	withFakeExecutable(t, "/usr/local/bin/tidemark")
	t.Setenv("HOME", t.TempDir())

	req := InstallRequest{RepoRoot: "/tmp/example-repo", IntervalMinutes: 60}
	a, err := PlanService(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := PlanService(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.UnitName != b.UnitName {
		t.Fatalf("unit name not stable across calls: %s vs %s", a.UnitName, b.UnitName)
	}
	if !strings.HasPrefix(a.UnitName, "tidemark-example-repo-") {
		t.Fatalf("unit name = %s, want tidemark-example-repo-<hash> prefix", a.UnitName)
	}
}

func TestPlanService_TimerAndServiceContent(t *testing.T) {
	withFakeExecutable(t, "/usr/local/bin/tidemark")
	t.Setenv("HOME", t.TempDir())

	req := InstallRequest{
		RepoRoot:        "/tmp/repo",
		IntervalMinutes: 15,
		UnitName:        "custom_name",
		LocalOnly:       true,
		Explain:         true,
		MetadataSuffix:  "dev",
	}
	plan, err := PlanService(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.UnitName != "custom-name" {
		t.Fatalf("unit name = %s, want custom-name (underscores sanitized)", plan.UnitName)
	}
	if !strings.Contains(plan.TimerContent, "OnUnitActiveSec=15min") {
		t.Fatalf("timer content missing interval: %s", plan.TimerContent)
	}
	for _, want := range []string{"--local-only", "--explain", "--tag"} {
		if !strings.Contains(plan.ServiceContent, want) {
			t.Fatalf("service content missing %q: %s", want, plan.ServiceContent)
		}
	}
}

func TestPlanService_InvalidIntervalRejected(t *testing.T) {
	withFakeExecutable(t, "/usr/local/bin/tidemark")
	t.Setenv("HOME", t.TempDir())

	_, err := PlanService(InstallRequest{RepoRoot: "/tmp/repo", IntervalMinutes: 0})
	tideErr, ok := err.(*tideerr.Error)
	if !ok || tideErr.Kind != tideerr.KindInvalidServiceInterval {
		t.Fatalf("got %v, want InvalidServiceInterval", err)
	}
}

func TestSanitizeUnitName_KeepsSafeCharset(t *testing.T) {
	if got := sanitizeUnitName("Tide Mark@Repo"); got != "tide-mark-repo" {
		t.Fatalf("sanitizeUnitName = %s, want tide-mark-repo", got)
	}
}

func TestSystemdQuote_EscapesBackslashesAndQuotes(t *testing.T) {
	got := systemdQuote(`C:\repo "weird"`)
	want := `"C:\\repo \"weird\""`
	if got != want {
		t.Fatalf("systemdQuote = %s, want %s", got, want)
	}
}
