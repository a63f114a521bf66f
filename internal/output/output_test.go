package output

import (
	"strings"
	"testing"

	"github.com/frgrisk/tidemark/internal/coremodel"
)

func TestFormatMark_NoMetadata(t *testing.T) {
	c := coremodel.VersionCoordinate{X: 1, Y: 2, Z: 3}
	if got := FormatMark(c); got != "1.2.3\n" {
		t.Fatalf("FormatMark = %q, want %q", got, "1.2.3\n")
	}
}

func TestFormatMark_WithMetadata(t *testing.T) {
	suffix := "dev"
	c := coremodel.VersionCoordinate{X: 1, Y: 2, Z: 3, Metadata: &suffix}
	if got := FormatMark(c); got != "1.2.3.dev\n" {
		t.Fatalf("FormatMark = %q, want %q", got, "1.2.3.dev\n")
	}
}

func TestFormatExplain_FixedOrderAndDetachedBranch(t *testing.T) {
	e := coremodel.MarkExplain{
		Version:               coremodel.VersionCoordinate{X: 1, Y: 0, Z: 1},
		TargetCommit:          coremodel.Commit{ID: "c2", Timestamp: 2},
		AnchorTagName:         "v2",
		AnchorCommit:          coremodel.Commit{ID: "c1", Timestamp: 1},
		DayDelta:              0,
		CommitIndex:           1,
		TimezoneCanonicalName: "UTC",
		RemoteStatus:          coremodel.RemoteNotAttempted,
	}

	got := FormatExplain(e)
	wantLines := []string{
		"version=1.0.1",
		"anchor_tag=v2",
		"anchor_commit=c1",
		"anchor_timestamp=1",
		"target_commit=c2",
		"target_timestamp=2",
		"day_delta=0",
		"commit_index=1",
		"timezone=UTC",
		"branch=detached",
		"remote_status=NotAttempted",
	}
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != len(wantLines) {
		t.Fatalf("got %d lines, want %d: %v", len(lines), len(wantLines), lines)
	}
	for i, want := range wantLines {
		if lines[i] != want {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want)
		}
	}
}

func TestFormatReleaseList_EmptyWhenNoReleases(t *testing.T) {
	if got := FormatReleaseList(nil); got != "" {
		t.Fatalf("FormatReleaseList(nil) = %q, want empty", got)
	}
}

func TestFormatReleaseList_TabSeparatedRow(t *testing.T) {
	releases := []coremodel.ReleaseTag{
		{AnchorValue: 1, Tag: coremodel.TagRef{Name: "v1.0.0", CommitID: "abc123", IsAnnotated: true, Source: coremodel.SourceLocal}},
	}
	want := "v1.0.0\t1\tabc123\tannotated\tlocal\n"
	if got := FormatReleaseList(releases); got != want {
		t.Fatalf("FormatReleaseList = %q, want %q", got, want)
	}
}
