package resolver

import (
	"path/filepath"

	"github.com/frgrisk/tidemark/internal/cache"
	"github.com/frgrisk/tidemark/internal/coremodel"
	"github.com/frgrisk/tidemark/internal/gitrepo"
	"github.com/frgrisk/tidemark/internal/tideconfig"
)

const fileCacheNamespace = "file"

// FileRequest is the input to ResolveFile.
type FileRequest struct {
	Path      string
	LocalOnly bool
}

// fileCacheKey is the exact file cache-key payload from spec.md §4.8:
// head_commit, path, local_only, metadata_suffix, follow_renames, timezone,
// tag_prefix, require_annotated_tags. head_commit is required because
// last_modifying_commit walks from HEAD — the result changes whenever HEAD
// advances, even for the same path.
type fileCacheKey struct {
	HeadCommit           string `json:"head_commit"`
	Path                 string `json:"path"`
	LocalOnly            bool   `json:"local_only"`
	MetadataSuffix       string `json:"metadata_suffix"`
	FollowRenames        bool   `json:"follow_renames"`
	Timezone             string `json:"timezone"`
	TagPrefix            string `json:"tag_prefix"`
	RequireAnnotatedTags bool   `json:"require_annotated_tags"`
}

// ResolveFile implements spec.md §4.7: find the commit that last modified
// path, then resolve that commit's mark exactly as ResolveMark would.
func ResolveFile(git gitrepo.Provider, cfg tideconfig.Config, store *cache.Store, req FileRequest) (coremodel.FileResult, error) {
	relPath, err := normalizeRepoPath(git.RepoRoot(), req.Path)
	if err != nil {
		return coremodel.FileResult{}, err
	}

	bypassCache := requiresRemoteRefresh(cfg, req.LocalOnly)

	var cacheKey string
	haveCacheKey := false
	if !bypassCache {
		head, err := git.HeadCommit()
		if err != nil {
			return coremodel.FileResult{}, err
		}

		key, err := cache.KeyFromPayload(fileCacheNamespace, fileCacheKey{
			HeadCommit:           head.ID,
			Path:                 relPath,
			LocalOnly:            req.LocalOnly,
			MetadataSuffix:       derefOrEmpty(cfg.Output.MetadataSuffix),
			FollowRenames:        cfg.Output.FollowRenames,
			Timezone:             cfg.Time.Timezone,
			TagPrefix:            cfg.Release.TagPrefix,
			RequireAnnotatedTags: cfg.Release.RequireAnnotatedTags,
		})
		if err != nil {
			return coremodel.FileResult{}, err
		}
		cacheKey = key
		haveCacheKey = true

		var cached coremodel.FileResult
		hit, err := store.Get(fileCacheNamespace, cacheKey, &cached)
		if err != nil {
			return coremodel.FileResult{}, err
		}
		if hit {
			return cached, nil
		}
	}

	lastCommit, err := git.LastModifyingCommit(relPath, cfg.Output.FollowRenames)
	if err != nil {
		return coremodel.FileResult{}, err
	}

	mark, err := ResolveMark(git, cfg, store, MarkRequest{
		TargetRev: lastCommit.ID,
		LocalOnly: req.LocalOnly,
	})
	if err != nil {
		return coremodel.FileResult{}, err
	}

	result := coremodel.FileResult{
		Path:       relPath,
		LastCommit: lastCommit,
		Mark:       mark,
	}

	if haveCacheKey {
		if err := store.Put(fileCacheNamespace, cacheKey, result); err != nil {
			return coremodel.FileResult{}, err
		}
	}
	return result, nil
}

// normalizeRepoPath resolves an absolute or repo-root-relative input path
// to a slash-separated path relative to the repo root, matching how git
// itself addresses tracked files. A relative input is joined to the repo
// root, not to the current working directory.
func normalizeRepoPath(repoRoot, input string) (string, error) {
	abs := input
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(repoRoot, input)
	}
	rel, err := filepath.Rel(repoRoot, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
