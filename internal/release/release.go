// Package release implements release-tag ingestion, merge policy, and
// anchor selection (spec.md §4.3, §4.4): turning a repository's raw tag
// refs into a sorted, ordinal-numbered eligible list, then picking the
// best ancestor release for a given target commit.
package release

import (
	"sort"
	"strings"

	"github.com/frgrisk/tidemark/internal/coremodel"
	"github.com/frgrisk/tidemark/internal/gitrepo"
	"github.com/frgrisk/tidemark/internal/tideconfig"
	"github.com/frgrisk/tidemark/internal/tideerr"
)

// LoadOptions carries the subset of configuration the release index
// pipeline needs, independent of the full tideconfig.Config shape so
// unit tests can construct it directly.
type LoadOptions struct {
	TagPrefix            string
	RequireAnnotatedTags bool
	LocalOnly            bool
	RemoteStrategy       tideconfig.RemoteStrategy
	RemoteName           string
	FallbackToLocal      bool
}

// Load runs the full ingestion pipeline (spec.md §4.3): fetch local tags,
// optionally merge in a remote refresh (remote entries win ties on name),
// filter by annotation policy, sort by the triple sort key, and assign
// ordinal anchor values.
func Load(git gitrepo.Provider, opts LoadOptions) ([]coremodel.ReleaseTag, coremodel.RemoteStatus, error) {
	byName := make(map[string]coremodel.TagRef)

	localTags, err := git.ListLocalTags(opts.TagPrefix)
	if err != nil {
		return nil, coremodel.RemoteNotAttempted, err
	}
	for _, tag := range localTags {
		byName[tag.Name] = tag
	}

	status := coremodel.RemoteNotAttempted
	shouldAttemptRemote := !opts.LocalOnly && opts.RemoteStrategy == tideconfig.RemoteStrategyLsRemote
	if shouldAttemptRemote {
		remoteTags, err := git.ListRemoteTags(opts.RemoteName, opts.TagPrefix)
		if err != nil {
			if opts.FallbackToLocal {
				status = coremodel.RemoteFallbackLocal
			} else {
				return nil, status, err
			}
		} else {
			status = coremodel.RemoteUsedRemote
			for _, tag := range remoteTags {
				// Remote entries override local entries of the same name so
				// the coordinate reflects the latest remote definition.
				byName[tag.Name] = tag
			}
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	var releases []coremodel.ReleaseTag
	for _, name := range names {
		tag := byName[name]
		if opts.RequireAnnotatedTags && !tag.IsAnnotated {
			continue
		}
		if _, err := sortKey(tag.Name, opts.TagPrefix); err != nil {
			return nil, status, err
		}
		releases = append(releases, coremodel.ReleaseTag{Tag: tag})
	}

	sort.SliceStable(releases, func(i, j int) bool {
		ki, _ := sortKey(releases[i].Tag.Name, opts.TagPrefix)
		kj, _ := sortKey(releases[j].Tag.Name, opts.TagPrefix)
		if ki != kj {
			return ki.less(kj)
		}
		return releases[i].Tag.Name < releases[j].Tag.Name
	})

	for i := range releases {
		releases[i].AnchorValue = uint64(i + 1)
	}

	return releases, status, nil
}

// tripleKey is the (major, minor, patch) sort key extracted from a tag
// name's leading digit runs (spec.md §4.3.1).
type tripleKey struct {
	major, minor, patch uint64
}

func (k tripleKey) less(other tripleKey) bool {
	if k.major != other.major {
		return k.major < other.major
	}
	if k.minor != other.minor {
		return k.minor < other.minor
	}
	return k.patch < other.patch
}

// sortKey strips prefix from name, splits the remainder on '.' into up to
// three segments, and takes the leading run of ASCII digits from each
// (missing/empty segments count as 0). A name whose major slot yields no
// digits fails with InvalidReleaseTag.
func sortKey(name, prefix string) (tripleKey, error) {
	if !strings.HasPrefix(name, prefix) {
		return tripleKey{}, tideerr.InvalidReleaseTag(name, prefix)
	}
	rest := strings.TrimPrefix(name, prefix)
	segments := strings.SplitN(rest, ".", 3)

	values := [3]uint64{}
	for i := 0; i < 3 && i < len(segments); i++ {
		values[i] = leadingDigits(segments[i])
	}

	if len(segments) == 0 || !hasLeadingDigit(segments[0]) {
		return tripleKey{}, tideerr.InvalidReleaseTag(name, prefix)
	}

	return tripleKey{major: values[0], minor: values[1], patch: values[2]}, nil
}

func hasLeadingDigit(segment string) bool {
	return len(segment) > 0 && segment[0] >= '0' && segment[0] <= '9'
}

func leadingDigits(segment string) uint64 {
	var value uint64
	for i := 0; i < len(segment); i++ {
		c := segment[i]
		if c < '0' || c > '9' {
			break
		}
		value = value*10 + uint64(c-'0')
	}
	return value
}

// SelectAnchor picks the best ancestor release for target among releases,
// using the strict lexicographic order from spec.md §4.4: distance
// ascending, anchor_value descending, tag name ascending, commit id
// ascending. Fails NoReleaseAnchor when no candidate qualifies.
func SelectAnchor(git gitrepo.Provider, releases []coremodel.ReleaseTag, target coremodel.Commit, prefix string) (coremodel.AnchorSelection, error) {
	var best *coremodel.AnchorSelection

	for _, r := range releases {
		exists, err := git.CommitExists(r.Tag.CommitID)
		if err != nil {
			return coremodel.AnchorSelection{}, err
		}
		if !exists {
			continue
		}

		isAncestor, err := git.IsAncestor(r.Tag.CommitID, target.ID)
		if err != nil {
			return coremodel.AnchorSelection{}, err
		}
		if !isAncestor {
			continue
		}

		distance, err := git.CommitDistance(r.Tag.CommitID, target.ID)
		if err != nil {
			return coremodel.AnchorSelection{}, err
		}
		anchorCommit, err := git.ResolveCommit(r.Tag.CommitID)
		if err != nil {
			return coremodel.AnchorSelection{}, err
		}

		candidate := coremodel.AnchorSelection{Release: r, Distance: distance, AnchorCommit: anchorCommit}
		if best == nil || isBetterAnchor(candidate, *best) {
			best = &candidate
		}
	}

	if best == nil {
		return coremodel.AnchorSelection{}, tideerr.NoReleaseAnchor(prefix)
	}
	return *best, nil
}

// isBetterAnchor reports whether candidate sorts before existing under the
// strict anchor ordering.
func isBetterAnchor(candidate, existing coremodel.AnchorSelection) bool {
	if candidate.Distance != existing.Distance {
		return candidate.Distance < existing.Distance
	}
	if candidate.Release.AnchorValue != existing.Release.AnchorValue {
		return candidate.Release.AnchorValue > existing.Release.AnchorValue
	}
	if candidate.Release.Tag.Name != existing.Release.Tag.Name {
		return candidate.Release.Tag.Name < existing.Release.Tag.Name
	}
	return candidate.Release.Tag.CommitID < existing.Release.Tag.CommitID
}

// VirtualRootAnchor synthesizes the anchor_value=0 sentinel used when no
// eligible release tag precedes the target (spec.md §4.4, §9).
func VirtualRootAnchor(git gitrepo.Provider, target coremodel.Commit) (coremodel.AnchorSelection, error) {
	root, err := git.RootCommit()
	if err != nil {
		return coremodel.AnchorSelection{}, err
	}
	distance, err := git.CommitDistance(root.ID, target.ID)
	if err != nil {
		return coremodel.AnchorSelection{}, err
	}

	return coremodel.AnchorSelection{
		Release: coremodel.ReleaseTag{
			AnchorValue: 0,
			Tag: coremodel.TagRef{
				Name:        coremodel.VirtualRootAnchorTagName,
				CommitID:    root.ID,
				IsAnnotated: false,
				Source:      coremodel.SourceLocal,
			},
		},
		Distance:     distance,
		AnchorCommit: root,
	}, nil
}
