// Package output renders resolver results to the fixed, script-safe text
// formats spec.md §6.2 defines. The deterministic renderers here never emit
// ANSI escapes; TTY-only decoration for `release list` lives in pretty.go
// and is never used to build the script-safe strings this file returns.
package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/frgrisk/tidemark/internal/coremodel"
)

// FormatMark renders the plain `mark`/`file` success line.
func FormatMark(coordinate coremodel.VersionCoordinate) string {
	return coordinate.String() + "\n"
}

// FormatExplain renders `mark --explain`'s fixed-order key=value lines.
func FormatExplain(e coremodel.MarkExplain) string {
	branch := "detached"
	if e.Branch != nil {
		branch = *e.Branch
	}

	lines := []string{
		"version=" + e.Version.String(),
		"anchor_tag=" + e.AnchorTagName,
		"anchor_commit=" + e.AnchorCommit.ID,
		"anchor_timestamp=" + strconv.FormatInt(e.AnchorCommit.Timestamp, 10),
		"target_commit=" + e.TargetCommit.ID,
		"target_timestamp=" + strconv.FormatInt(e.TargetCommit.Timestamp, 10),
		"day_delta=" + strconv.FormatUint(uint64(e.DayDelta), 10),
		"commit_index=" + strconv.FormatUint(uint64(e.CommitIndex), 10),
		"timezone=" + e.TimezoneCanonicalName,
		"branch=" + branch,
		"remote_status=" + e.RemoteStatus.String(),
	}
	return strings.Join(lines, "\n") + "\n"
}

// FormatReleaseList renders `release list`'s tab-separated rows, one per
// release, empty output when releases is empty.
func FormatReleaseList(releases []coremodel.ReleaseTag) string {
	var b strings.Builder
	for _, r := range releases {
		annotated := "lightweight"
		if r.Tag.IsAnnotated {
			annotated = "annotated"
		}
		source := "local"
		if r.Tag.Source == coremodel.SourceRemote {
			source = "remote"
		}
		fmt.Fprintf(&b, "%s\t%d\t%s\t%s\t%s\n", r.Tag.Name, r.AnchorValue, r.Tag.CommitID, annotated, source)
	}
	return b.String()
}
