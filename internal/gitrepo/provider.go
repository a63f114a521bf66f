// Package gitrepo declares the repository-query capability set tidemark's
// resolver depends on (spec.md §4.2). The resolver never branches on which
// concrete binding implements Provider; see internal/gitrepo/govcs for the
// go-git-backed implementation and internal/gitrepo/fake for the
// in-memory test double.
package gitrepo

import "github.com/frgrisk/tidemark/internal/coremodel"

// Provider is the narrow capability interface the core resolver consumes.
// All methods are synchronous and blocking; there is no cancellation
// beyond process termination (spec.md §5).
type Provider interface {
	// RepoRoot returns the working-tree root path.
	RepoRoot() string

	// GitDir returns the repository's git directory (for cache rooting).
	GitDir() (string, error)

	// HeadCommit resolves the current HEAD commit.
	HeadCommit() (coremodel.Commit, error)

	// ResolveCommit resolves an arbitrary revision to a commit, failing if
	// rev does not name a commit.
	ResolveCommit(rev string) (coremodel.Commit, error)

	// CommitExists reports whether rev names a commit that exists.
	CommitExists(rev string) (bool, error)

	// ListLocalTags returns local tags whose name starts with prefix,
	// peeling annotated tag objects to their underlying commit.
	ListLocalTags(prefix string) ([]coremodel.TagRef, error)

	// ListRemoteTags prune-refreshes remote tag refs into a private
	// namespace, then returns those matching prefix.
	ListRemoteTags(remote, prefix string) ([]coremodel.TagRef, error)

	// IsAncestor reports whether a is an ancestor of (or equal to) b.
	IsAncestor(a, b string) (bool, error)

	// CommitDistance counts commits in the half-open range (a, b].
	CommitDistance(a, b string) (uint32, error)

	// AncestryPathCommits returns commits strictly after a through b along
	// the ancestry path, oldest-first; empty when a == b.
	AncestryPathCommits(a, b string) ([]coremodel.Commit, error)

	// LastModifyingCommit returns the commit that last modified path,
	// failing with FileHistoryNotFound if path has no history.
	LastModifyingCommit(path string, followRenames bool) (coremodel.Commit, error)

	// RootCommit returns a repeatable parentless ancestor of HEAD.
	RootCommit() (coremodel.Commit, error)

	// CurrentBranch returns the checked-out branch name, or ("", false)
	// when HEAD is detached.
	CurrentBranch() (string, bool, error)
}
