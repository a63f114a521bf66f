package release

import (
	"github.com/Masterminds/semver"

	"github.com/frgrisk/tidemark/internal/coremodel"
	"github.com/frgrisk/tidemark/internal/tidelog"
)

// WarnIfMetadataBehindLatest logs an advisory (never an error, never a
// coordinate input) when a --tag metadata suffix parses as semver and
// sorts behind the most recently anchored release's own semver text.
// anchor_value stays purely ordinal (I1); this exists only to surface a
// human-meaningful heads-up on stderr.
func WarnIfMetadataBehindLatest(metadataSuffix *string, releases []coremodel.ReleaseTag) {
	if metadataSuffix == nil || len(releases) == 0 {
		return
	}
	suffixVer, err := semver.NewVersion(*metadataSuffix)
	if err != nil {
		return
	}

	latest := releases[len(releases)-1]
	latestVer, err := semver.NewVersion(latest.Tag.Name)
	if err != nil {
		return
	}

	if suffixVer.LessThan(latestVer) {
		tidelog.Logger.Warnf("metadata suffix %q is behind the latest release tag %q", suffixVer, latest.Tag.Name)
	}
}
