package resolver

import (
	"sort"

	"github.com/frgrisk/tidemark/internal/coremodel"
	"github.com/frgrisk/tidemark/internal/gitrepo"
	"github.com/frgrisk/tidemark/internal/tideerr"
	"github.com/frgrisk/tidemark/internal/timezone"
)

// commitIndex computes the 1-based same-day ordinal of target among the
// commits sharing its calendar day (in tz) along the ancestry path
// from anchor to target (spec.md §4.5). The anchor commit itself is day 0
// of its own ordinal sequence and is never counted.
func commitIndex(git gitrepo.Provider, tz timezone.Policy, anchor, target coremodel.Commit) (uint32, error) {
	if anchor.ID == target.ID {
		return 0, nil
	}

	path, err := git.AncestryPathCommits(anchor.ID, target.ID)
	if err != nil {
		return 0, err
	}

	sort.SliceStable(path, func(i, j int) bool {
		if path[i].Timestamp != path[j].Timestamp {
			return path[i].Timestamp < path[j].Timestamp
		}
		return path[i].ID < path[j].ID
	})

	targetDay := tz.DateOf(target.Timestamp)

	var ordinal uint32
	found := false
	for _, c := range path {
		if !tz.DateOf(c.Timestamp).Equal(targetDay) {
			continue
		}
		ordinal++
		if c.ID == target.ID {
			found = true
			break
		}
	}

	if !found {
		return 0, tideerr.Internal("commit index invariant violated: target %s not found on its own ancestry path", target.ID)
	}
	return ordinal, nil
}
