package resolver

import (
	"testing"
	"time"

	"github.com/frgrisk/tidemark/internal/cache"
	"github.com/frgrisk/tidemark/internal/coremodel"
	"github.com/frgrisk/tidemark/internal/gitrepo/fake"
	"github.com/frgrisk/tidemark/internal/tideconfig"
)

func unixAt(y int, m time.Month, d, h int) int64 {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC).Unix()
}

func baselineConfig() tideconfig.Config {
	cfg := tideconfig.Default()
	cfg.Cache.Enabled = false
	return cfg
}

// Scenario 1: baseline coordinate.
func TestResolveMark_BaselineCoordinate(t *testing.T) {
	repo := fake.New("/repo")
	repo.AddCommit("c1", unixAt(2024, 1, 1, 0))
	repo.AddCommit("c2", unixAt(2024, 1, 1, 1), "c1")
	repo.AddCommit("c3", unixAt(2024, 1, 2, 1), "c2")
	repo.Head = "c3"
	repo.Branch = "main"
	repo.LocalTags = []coremodel.TagRef{
		{Name: "v1", CommitID: "c1", IsAnnotated: true, Source: coremodel.SourceLocal},
	}

	cfg := baselineConfig()
	store := cache.New("", false)

	result, err := ResolveMark(repo, cfg, store, MarkRequest{LocalOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Coordinate.String(); got != "1.1.1" {
		t.Fatalf("coordinate = %s, want 1.1.1", got)
	}
}

// Scenario 2: explain format.
func TestResolveMark_ExplainFormat(t *testing.T) {
	repo := fake.New("/repo")
	repo.AddCommit("c1", unixAt(2024, 1, 1, 0))
	repo.AddCommit("c2", unixAt(2024, 1, 1, 2), "c1")
	repo.Head = "c2"
	repo.LocalTags = []coremodel.TagRef{
		{Name: "v2", CommitID: "c1", IsAnnotated: true, Source: coremodel.SourceLocal},
	}

	cfg := baselineConfig()
	store := cache.New("", false)

	result, err := ResolveMark(repo, cfg, store, MarkRequest{LocalOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Coordinate.String(); got != "1.0.1" {
		t.Fatalf("coordinate = %s, want 1.0.1", got)
	}
	if result.Explain.AnchorTagName != "v2" {
		t.Fatalf("anchor_tag = %s, want v2", result.Explain.AnchorTagName)
	}
	if result.Explain.DayDelta != 0 {
		t.Fatalf("day_delta = %d, want 0", result.Explain.DayDelta)
	}
	if result.Explain.CommitIndex != 1 {
		t.Fatalf("commit_index = %d, want 1", result.Explain.CommitIndex)
	}
}

// Scenario 3: lightweight-tag gating.
func TestResolveMark_LightweightTagGating(t *testing.T) {
	repo := fake.New("/repo")
	repo.AddCommit("c1", unixAt(2024, 1, 1, 0))
	repo.AddCommit("c2", unixAt(2024, 1, 1, 1), "c1")
	repo.Head = "c2"
	repo.LocalTags = []coremodel.TagRef{
		{Name: "v1", CommitID: "c1", IsAnnotated: false, Source: coremodel.SourceLocal},
	}

	cfg := baselineConfig()
	store := cache.New("", false)

	result, err := ResolveMark(repo, cfg, store, MarkRequest{LocalOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Coordinate.String(); got != "0.0.1" {
		t.Fatalf("coordinate = %s, want 0.0.1", got)
	}

	cfg.Release.RequireAnnotatedTags = false
	result, err = ResolveMark(repo, cfg, store, MarkRequest{LocalOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Coordinate.String(); got != "1.0.1" {
		t.Fatalf("coordinate = %s, want 1.0.1", got)
	}
}

// Scenario 6: remote overrides local on same name.
func TestResolveMark_RemoteOverridesLocal(t *testing.T) {
	repo := fake.New("/repo")
	repo.AddCommit("c1", unixAt(2024, 1, 1, 0))
	repo.AddCommit("c2", unixAt(2024, 1, 2, 0), "c1")
	repo.AddCommit("c3", unixAt(2024, 1, 3, 0), "c2")
	repo.Head = "c3"
	repo.LocalTags = []coremodel.TagRef{
		{Name: "v1", CommitID: "c1", IsAnnotated: true, Source: coremodel.SourceLocal},
	}

	cfg := baselineConfig()
	store := cache.New("", false)

	// Before the upstream force-push: remote agrees with local.
	repo.RemoteTags = []coremodel.TagRef{
		{Name: "v1", CommitID: "c1", IsAnnotated: true, Source: coremodel.SourceRemote},
	}
	beforeResult, err := ResolveMark(repo, cfg, store, MarkRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := beforeResult.Coordinate.String(); got != "1.2.1" {
		t.Fatalf("remote mode (before move) coordinate = %s, want 1.2.1", got)
	}

	// Upstream moves v1 to c2 and force-pushes.
	repo.RemoteTags = []coremodel.TagRef{
		{Name: "v1", CommitID: "c2", IsAnnotated: true, Source: coremodel.SourceRemote},
	}
	afterResult, err := ResolveMark(repo, cfg, store, MarkRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := afterResult.Coordinate.String(); got != "1.1.1" {
		t.Fatalf("remote mode (after move) coordinate = %s, want 1.1.1", got)
	}

	localResult, err := ResolveMark(repo, cfg, store, MarkRequest{LocalOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := localResult.Coordinate.String(); got != "1.2.1" {
		t.Fatalf("local-only coordinate = %s, want 1.2.1", got)
	}
}

// P4 — anchor equals target implies zero day_delta and commit_index.
func TestResolveMark_AnchorEqualsTarget(t *testing.T) {
	repo := fake.New("/repo")
	repo.AddCommit("c1", unixAt(2024, 1, 1, 0))
	repo.Head = "c1"
	repo.LocalTags = []coremodel.TagRef{
		{Name: "v1", CommitID: "c1", IsAnnotated: true, Source: coremodel.SourceLocal},
	}

	cfg := baselineConfig()
	store := cache.New("", false)

	result, err := ResolveMark(repo, cfg, store, MarkRequest{LocalOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Explain.DayDelta != 0 || result.Explain.CommitIndex != 0 {
		t.Fatalf("expected zero day_delta/commit_index at anchor, got %+v", result.Explain)
	}
}

// No eligible release tag precedes target: virtual root anchor recovery.
func TestResolveMark_VirtualRootAnchor(t *testing.T) {
	repo := fake.New("/repo")
	repo.AddCommit("c1", unixAt(2024, 1, 1, 0))
	repo.AddCommit("c2", unixAt(2024, 1, 1, 1), "c1")
	repo.Head = "c2"

	cfg := baselineConfig()
	store := cache.New("", false)

	result, err := ResolveMark(repo, cfg, store, MarkRequest{LocalOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Explain.AnchorTagName != coremodel.VirtualRootAnchorTagName {
		t.Fatalf("anchor_tag = %s, want %s", result.Explain.AnchorTagName, coremodel.VirtualRootAnchorTagName)
	}
	if result.Coordinate.X != 0 {
		t.Fatalf("X = %d, want 0 for virtual root anchor", result.Coordinate.X)
	}
}
