// Package govcs binds gitrepo.Provider to github.com/go-git/go-git/v5 — a
// native Go library, not a spawned subprocess, following the same
// dependency the teacher (gotaglog) uses for tag enumeration and ancestry
// walks. See DESIGN.md for why this binding was chosen over a
// `git`-subprocess text protocol.
package govcs

import (
	"fmt"
	"sort"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/frgrisk/tidemark/internal/coremodel"
	"github.com/frgrisk/tidemark/internal/tideerr"
)

// remoteTagNamespace is where a remote-tag refresh stages refs, kept
// separate from refs/tags so a failed or stale refresh never corrupts the
// repository's own tag namespace (spec.md §6.4).
const remoteTagNamespace = "refs/tidemark/remote-tags/"

// Repo is the go-git-backed Provider implementation.
type Repo struct {
	repo     *gogit.Repository
	repoRoot string
}

// Discover opens the repository containing startDir, walking up through
// parent directories the way `git rev-parse --show-toplevel` does.
func Discover(startDir string) (*Repo, error) {
	repo, err := gogit.PlainOpenWithOptions(startDir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, tideerr.NotGitRepository(startDir)
	}

	wt, err := repo.Worktree()
	root := startDir
	if err == nil {
		root = wt.Filesystem.Root()
	}

	return &Repo{repo: repo, repoRoot: root}, nil
}

func (r *Repo) RepoRoot() string { return r.repoRoot }

func (r *Repo) GitDir() (string, error) {
	if fsStorer, ok := r.repo.Storer.(*filesystem.Storage); ok {
		return fsStorer.Filesystem().Root(), nil
	}
	// Non-filesystem storers (e.g. in-memory repositories in tests) have
	// no on-disk git directory; callers in that situation should not be
	// relying on this path for cache rooting.
	return r.repoRoot + "/.git", nil
}

func (r *Repo) HeadCommit() (coremodel.Commit, error) {
	return r.ResolveCommit("HEAD")
}

func (r *Repo) ResolveCommit(rev string) (coremodel.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return coremodel.Commit{}, tideerr.GitCommand(fmt.Sprintf("resolve %s", rev), err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return coremodel.Commit{}, tideerr.GitCommand(fmt.Sprintf("load commit %s", hash), err)
	}
	return commitInfo(commit), nil
}

func (r *Repo) CommitExists(rev string) (bool, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return false, nil
	}
	if _, err := r.repo.CommitObject(*hash); err != nil {
		return false, nil
	}
	return true, nil
}

func (r *Repo) ListLocalTags(prefix string) ([]coremodel.TagRef, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, tideerr.GitCommand("list local tags", err)
	}
	defer iter.Close()

	var tags []coremodel.TagRef
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if len(name) < len(prefix) || name[:len(prefix)] != prefix {
			return nil
		}
		tag, ok := r.peelTag(ref.Hash())
		if !ok {
			return nil
		}
		tag.Name = name
		tag.Source = coremodel.SourceLocal
		tags = append(tags, tag)
		return nil
	})
	if err != nil {
		return nil, tideerr.GitCommand("list local tags", err)
	}
	return tags, nil
}

// peelTag resolves a tag ref hash to its underlying commit, reporting
// whether the tag is annotated.
func (r *Repo) peelTag(hash plumbing.Hash) (coremodel.TagRef, bool) {
	if tagObj, err := r.repo.TagObject(hash); err == nil {
		commit, err := tagObj.Commit()
		if err != nil {
			return coremodel.TagRef{}, false
		}
		return coremodel.TagRef{CommitID: commit.Hash.String(), IsAnnotated: true}, true
	}

	if _, err := r.repo.CommitObject(hash); err != nil {
		return coremodel.TagRef{}, false
	}
	return coremodel.TagRef{CommitID: hash.String(), IsAnnotated: false}, true
}

func (r *Repo) ListRemoteTags(remote, prefix string) ([]coremodel.TagRef, error) {
	refspec := config.RefSpec(fmt.Sprintf("+refs/tags/%s*:%s%s*", prefix, remoteTagNamespace, prefix))

	err := r.repo.Fetch(&gogit.FetchOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{refspec},
		Tags:       gogit.NoTags,
		Prune:      true,
		Force:      true,
	})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		return nil, tideerr.GitCommand(fmt.Sprintf("fetch remote tags from %s", remote), err)
	}

	refIter, err := r.repo.References()
	if err != nil {
		return nil, tideerr.GitCommand("list remote-staged tags", err)
	}
	defer refIter.Close()

	var tags []coremodel.TagRef
	err = refIter.ForEach(func(ref *plumbing.Reference) error {
		full := ref.Name().String()
		if len(full) <= len(remoteTagNamespace) || full[:len(remoteTagNamespace)] != remoteTagNamespace {
			return nil
		}
		name := full[len(remoteTagNamespace):]
		if len(name) < len(prefix) || name[:len(prefix)] != prefix {
			return nil
		}
		tag, ok := r.peelTag(ref.Hash())
		if !ok {
			return nil
		}
		tag.Name = name
		tag.Source = coremodel.SourceRemote
		tags = append(tags, tag)
		return nil
	})
	if err != nil {
		return nil, tideerr.GitCommand("list remote-staged tags", err)
	}
	return tags, nil
}

func (r *Repo) IsAncestor(a, b string) (bool, error) {
	if a == b {
		return true, nil
	}
	ac, err := r.repo.CommitObject(plumbing.NewHash(a))
	if err != nil {
		return false, tideerr.GitCommand(fmt.Sprintf("load commit %s", a), err)
	}
	bc, err := r.repo.CommitObject(plumbing.NewHash(b))
	if err != nil {
		return false, tideerr.GitCommand(fmt.Sprintf("load commit %s", b), err)
	}
	ok, err := ac.IsAncestor(bc)
	if err != nil {
		return false, tideerr.GitCommand(fmt.Sprintf("ancestry check %s..%s", a, b), err)
	}
	return ok, nil
}

func (r *Repo) CommitDistance(a, b string) (uint32, error) {
	setA, _, err := r.ancestorSet(a)
	if err != nil {
		return 0, err
	}
	setB, _, err := r.ancestorSet(b)
	if err != nil {
		return 0, err
	}

	count := 0
	for hash := range setB {
		if _, excluded := setA[hash]; !excluded {
			count++
		}
	}
	return uint32(count), nil
}

func (r *Repo) AncestryPathCommits(a, b string) ([]coremodel.Commit, error) {
	if a == b {
		return nil, nil
	}

	setA, _, err := r.ancestorSet(a)
	if err != nil {
		return nil, err
	}
	_, orderedB, err := r.ancestorSet(b)
	if err != nil {
		return nil, err
	}

	aCommit, err := r.repo.CommitObject(plumbing.NewHash(a))
	if err != nil {
		return nil, tideerr.GitCommand(fmt.Sprintf("load commit %s", a), err)
	}

	var onPath []coremodel.Commit
	for _, c := range orderedB {
		if _, excluded := setA[c.Hash]; excluded {
			continue
		}
		isDescendant, err := aCommit.IsAncestor(c)
		if err != nil {
			return nil, tideerr.GitCommand(fmt.Sprintf("ancestry check %s..%s", a, c.Hash), err)
		}
		if isDescendant {
			onPath = append(onPath, commitInfo(c))
		}
	}

	sort.Slice(onPath, func(i, j int) bool {
		if onPath[i].Timestamp != onPath[j].Timestamp {
			return onPath[i].Timestamp < onPath[j].Timestamp
		}
		return onPath[i].ID < onPath[j].ID
	})
	return onPath, nil
}

// ancestorSet walks every commit reachable from rev (inclusive), returning
// both a hash set (for membership tests) and the commits in BFS visitation
// order (for deterministic, repeatable iteration).
func (r *Repo) ancestorSet(rev string) (map[plumbing.Hash]struct{}, []*object.Commit, error) {
	start, err := r.repo.CommitObject(plumbing.NewHash(rev))
	if err != nil {
		return nil, nil, tideerr.GitCommand(fmt.Sprintf("load commit %s", rev), err)
	}

	set := make(map[plumbing.Hash]struct{})
	var ordered []*object.Commit
	iter := object.NewCommitIterBSF(start, nil, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		set[c.Hash] = struct{}{}
		ordered = append(ordered, c)
		return nil
	})
	if err != nil && err != storer.ErrStop {
		return nil, nil, tideerr.GitCommand(fmt.Sprintf("walk ancestors of %s", rev), err)
	}
	return set, ordered, nil
}

func (r *Repo) LastModifyingCommit(path string, followRenames bool) (coremodel.Commit, error) {
	// followRenames is ignored: renames are not followed, so history before
	// a rename is not searched.
	_ = followRenames

	head, err := r.repo.Head()
	if err != nil {
		return coremodel.Commit{}, tideerr.GitCommand("resolve HEAD", err)
	}
	headCommit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return coremodel.Commit{}, tideerr.GitCommand("load HEAD commit", err)
	}

	var best *object.Commit
	iter := object.NewCommitIterBSF(headCommit, nil, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		changed, err := fileChangedAt(c, path)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		if best == nil ||
			c.Committer.When.After(best.Committer.When) ||
			(c.Committer.When.Equal(best.Committer.When) && c.Hash.String() < best.Hash.String()) {
			best = c
		}
		return nil
	})
	if err != nil {
		return coremodel.Commit{}, tideerr.GitCommand(fmt.Sprintf("walk history of %s", path), err)
	}
	if best == nil {
		return coremodel.Commit{}, tideerr.FileHistoryNotFound(path)
	}
	return commitInfo(best), nil
}

func fileChangedAt(c *object.Commit, path string) (bool, error) {
	curHash, curOk, err := fileHashAt(c, path)
	if err != nil {
		return false, err
	}

	if c.NumParents() == 0 {
		return curOk, nil
	}

	parent, err := c.Parent(0)
	if err != nil {
		return false, err
	}
	parentHash, parentOk, err := fileHashAt(parent, path)
	if err != nil {
		return false, err
	}

	if curOk != parentOk {
		return true, nil
	}
	return curOk && curHash != parentHash, nil
}

func fileHashAt(c *object.Commit, path string) (plumbing.Hash, bool, error) {
	file, err := c.File(path)
	if err == object.ErrFileNotFound {
		return plumbing.ZeroHash, false, nil
	}
	if err != nil {
		return plumbing.ZeroHash, false, err
	}
	return file.Hash, true, nil
}

func (r *Repo) RootCommit() (coremodel.Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		return coremodel.Commit{}, tideerr.GitCommand("resolve HEAD", err)
	}
	headCommit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return coremodel.Commit{}, tideerr.GitCommand("load HEAD commit", err)
	}

	var roots []*object.Commit
	iter := object.NewCommitIterBSF(headCommit, nil, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		if c.NumParents() == 0 {
			roots = append(roots, c)
		}
		return nil
	})
	if err != nil {
		return coremodel.Commit{}, tideerr.GitCommand("walk to root commit", err)
	}
	if len(roots) == 0 {
		return coremodel.Commit{}, tideerr.Internal("no root commit found")
	}

	sort.Slice(roots, func(i, j int) bool {
		ti, tj := roots[i].Committer.When.Unix(), roots[j].Committer.When.Unix()
		if ti != tj {
			return ti < tj
		}
		return roots[i].Hash.String() < roots[j].Hash.String()
	})
	return commitInfo(roots[0]), nil
}

func (r *Repo) CurrentBranch() (string, bool, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", false, tideerr.GitCommand("resolve HEAD", err)
	}
	if head.Name().IsBranch() {
		return head.Name().Short(), true, nil
	}
	return "", false, nil
}

func commitInfo(c *object.Commit) coremodel.Commit {
	return coremodel.Commit{ID: c.Hash.String(), Timestamp: c.Committer.When.Unix()}
}
