// Package resolver implements the orchestration layer that turns a target
// commit (or a path, via file.go) into a VersionCoordinate: cache lookup,
// release index loading, anchor selection, and index computation, in the
// fixed order spec.md §4.6 requires.
package resolver

import (
	"strings"

	"github.com/frgrisk/tidemark/internal/cache"
	"github.com/frgrisk/tidemark/internal/coremodel"
	"github.com/frgrisk/tidemark/internal/gitrepo"
	"github.com/frgrisk/tidemark/internal/release"
	"github.com/frgrisk/tidemark/internal/tideconfig"
	"github.com/frgrisk/tidemark/internal/tideerr"
	"github.com/frgrisk/tidemark/internal/timezone"
)

const markCacheNamespace = "mark"

// MarkRequest is the input to ResolveMark.
type MarkRequest struct {
	TargetRev      string // empty means HEAD
	LocalOnly      bool
	MetadataSuffix *string // request-level override, before normalization
}

// markCacheKey is the exact mark cache-key payload from spec.md §4.8.
// Field order is the struct's declared order, which is also encoding/json's
// marshal order — the canonical byte string this namespace hashes.
type markCacheKey struct {
	TargetCommit         string `json:"target_commit"`
	LocalOnly            bool   `json:"local_only"`
	TagPrefix            string `json:"tag_prefix"`
	RequireAnnotatedTags bool   `json:"require_annotated_tags"`
	Timezone             string `json:"timezone"`
	RemoteStrategy       string `json:"remote_strategy"`
	RemoteName           string `json:"remote_name"`
	MetadataSuffix       string `json:"metadata_suffix"`
}

// ResolveMark implements spec.md §4.6's fixed orchestration order.
func ResolveMark(git gitrepo.Provider, cfg tideconfig.Config, store *cache.Store, req MarkRequest) (coremodel.MarkResult, error) {
	tz, err := timezone.Parse(cfg.Time.Timezone)
	if err != nil {
		return coremodel.MarkResult{}, err
	}

	target, err := resolveTarget(git, req.TargetRev)
	if err != nil {
		return coremodel.MarkResult{}, err
	}

	metadata := normalizeMetadataSuffix(req.MetadataSuffix, cfg.Output.MetadataSuffix)
	bypassCache := requiresRemoteRefresh(cfg, req.LocalOnly)

	var cacheKey string
	haveCacheKey := false
	if !bypassCache {
		key, err := cache.KeyFromPayload(markCacheNamespace, markCacheKey{
			TargetCommit:         target.ID,
			LocalOnly:            req.LocalOnly,
			TagPrefix:            cfg.Release.TagPrefix,
			RequireAnnotatedTags: cfg.Release.RequireAnnotatedTags,
			Timezone:             cfg.Time.Timezone,
			RemoteStrategy:       string(cfg.Remote.Strategy),
			RemoteName:           cfg.Remote.Name,
			MetadataSuffix:       derefOrEmpty(metadata),
		})
		if err != nil {
			return coremodel.MarkResult{}, err
		}
		cacheKey = key
		haveCacheKey = true

		var cached coremodel.MarkResult
		hit, err := store.Get(markCacheNamespace, cacheKey, &cached)
		if err != nil {
			return coremodel.MarkResult{}, err
		}
		if hit {
			return cached, nil
		}
	}

	releases, remoteStatus, err := release.Load(git, release.LoadOptions{
		TagPrefix:            cfg.Release.TagPrefix,
		RequireAnnotatedTags: cfg.Release.RequireAnnotatedTags,
		LocalOnly:            req.LocalOnly,
		RemoteStrategy:       cfg.Remote.Strategy,
		RemoteName:           cfg.Remote.Name,
		FallbackToLocal:      cfg.Remote.FallbackToLocal,
	})
	if err != nil {
		return coremodel.MarkResult{}, err
	}
	release.WarnIfMetadataBehindLatest(metadata, releases)

	anchor, err := release.SelectAnchor(git, releases, target, cfg.Release.TagPrefix)
	if err != nil {
		tideErr, ok := err.(*tideerr.Error)
		if !ok || tideErr.Kind != tideerr.KindNoReleaseAnchor {
			return coremodel.MarkResult{}, err
		}
		anchor, err = release.VirtualRootAnchor(git, target)
		if err != nil {
			return coremodel.MarkResult{}, err
		}
	}

	dayDelta := tz.DayDelta(anchor.AnchorCommit.Timestamp, target.Timestamp)
	if dayDelta < 0 {
		return coremodel.MarkResult{}, tideerr.TimestampAnomaly(anchor.AnchorCommit.Timestamp, target.Timestamp)
	}
	if dayDelta > int64(^uint32(0)) {
		return coremodel.MarkResult{}, tideerr.Internal("day delta overflow: %d", dayDelta)
	}

	commitIndex, err := commitIndex(git, tz, anchor.AnchorCommit, target)
	if err != nil {
		return coremodel.MarkResult{}, err
	}

	coordinate := coremodel.VersionCoordinate{
		X:        anchor.Release.AnchorValue,
		Y:        uint32(dayDelta),
		Z:        commitIndex,
		Metadata: metadata,
	}

	branchName, onBranch, err := git.CurrentBranch()
	if err != nil {
		return coremodel.MarkResult{}, err
	}
	var branch *string
	if onBranch {
		branch = &branchName
	}

	result := coremodel.MarkResult{
		Coordinate: coordinate,
		Explain: coremodel.MarkExplain{
			Version:               coordinate,
			TargetCommit:          target,
			AnchorTagName:         anchor.Release.Tag.Name,
			AnchorCommit:          anchor.AnchorCommit,
			DayDelta:              uint32(dayDelta),
			CommitIndex:           commitIndex,
			TimezoneCanonicalName: tz.CanonicalName(),
			RemoteStatus:          remoteStatus,
			Branch:                branch,
		},
	}

	if haveCacheKey {
		if err := store.Put(markCacheNamespace, cacheKey, result); err != nil {
			return coremodel.MarkResult{}, err
		}
	}
	return result, nil
}

func resolveTarget(git gitrepo.Provider, rev string) (coremodel.Commit, error) {
	if rev == "" {
		return git.HeadCommit()
	}
	return git.ResolveCommit(rev)
}

// normalizeMetadataSuffix takes the request-level override if present,
// else the configured default; trims whitespace; empty-after-trim becomes
// nil (spec.md §4.6.1).
func normalizeMetadataSuffix(requestOverride, configDefault *string) *string {
	var value *string
	if requestOverride != nil {
		value = requestOverride
	} else {
		value = configDefault
	}
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// requiresRemoteRefresh mirrors spec.md §4.6: any remote-touching resolve
// must re-check remote state, so caching is refused for it. local_only
// mode does cache.
func requiresRemoteRefresh(cfg tideconfig.Config, localOnly bool) bool {
	return !localOnly && cfg.Remote.Strategy == tideconfig.RemoteStrategyLsRemote
}
