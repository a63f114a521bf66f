// Package fake provides an in-memory gitrepo.Provider test double so
// resolver and release tests can exercise exact scenarios (merge commits,
// orphan branches, anomalous timestamps) without a real repository on disk.
package fake

import (
	"sort"
	"strings"

	"github.com/frgrisk/tidemark/internal/coremodel"
	"github.com/frgrisk/tidemark/internal/tideerr"
)

// CommitNode is one commit in a hand-built history graph.
type CommitNode struct {
	ID        string
	Timestamp int64
	Parents   []string
}

// Provider is an in-memory gitrepo.Provider built from an explicit commit
// graph and tag list, with a separately settable remote tag set so tests
// can exercise merge and fallback behavior deterministically.
type Provider struct {
	Root        string
	Commits     map[string]CommitNode
	Head        string
	Branch      string // empty means detached HEAD
	LocalTags   []coremodel.TagRef
	RemoteTags  []coremodel.TagRef
	RemoteErr   error
	FileHistory map[string][]string // path -> commit IDs that touched it, most recent first
}

// New builds an empty fake repository rooted at root.
func New(root string) *Provider {
	return &Provider{Root: root, Commits: make(map[string]CommitNode), FileHistory: make(map[string][]string)}
}

// AddCommit registers a commit node.
func (p *Provider) AddCommit(id string, ts int64, parents ...string) {
	p.Commits[id] = CommitNode{ID: id, Timestamp: ts, Parents: parents}
}

func (p *Provider) RepoRoot() string { return p.Root }

func (p *Provider) GitDir() (string, error) { return p.Root + "/.git", nil }

func (p *Provider) HeadCommit() (coremodel.Commit, error) {
	return p.ResolveCommit(p.Head)
}

func (p *Provider) ResolveCommit(rev string) (coremodel.Commit, error) {
	node, ok := p.Commits[rev]
	if !ok {
		return coremodel.Commit{}, tideerr.GitCommand("resolve "+rev, tideerr.New(tideerr.KindGitCommand, "unknown commit %s", rev))
	}
	return coremodel.Commit{ID: node.ID, Timestamp: node.Timestamp}, nil
}

func (p *Provider) CommitExists(rev string) (bool, error) {
	_, ok := p.Commits[rev]
	return ok, nil
}

func (p *Provider) ListLocalTags(prefix string) ([]coremodel.TagRef, error) {
	return filterByPrefix(p.LocalTags, prefix), nil
}

func (p *Provider) ListRemoteTags(remote, prefix string) ([]coremodel.TagRef, error) {
	if p.RemoteErr != nil {
		return nil, p.RemoteErr
	}
	return filterByPrefix(p.RemoteTags, prefix), nil
}

func filterByPrefix(tags []coremodel.TagRef, prefix string) []coremodel.TagRef {
	var out []coremodel.TagRef
	for _, t := range tags {
		if strings.HasPrefix(t.Name, prefix) {
			out = append(out, t)
		}
	}
	return out
}

func (p *Provider) IsAncestor(a, b string) (bool, error) {
	if a == b {
		return true, nil
	}
	set := p.ancestorSet(b)
	_, ok := set[a]
	return ok, nil
}

func (p *Provider) CommitDistance(a, b string) (uint32, error) {
	setA := p.ancestorSet(a)
	setB := p.ancestorSet(b)
	var count uint32
	for id := range setB {
		if _, excluded := setA[id]; !excluded {
			count++
		}
	}
	return count, nil
}

func (p *Provider) AncestryPathCommits(a, b string) ([]coremodel.Commit, error) {
	if a == b {
		return nil, nil
	}
	setA := p.ancestorSet(a)
	setB := p.ancestorSet(b)

	var out []coremodel.Commit
	for id := range setB {
		if _, excluded := setA[id]; excluded {
			continue
		}
		isDescendant, _ := p.IsAncestor(a, id)
		if isDescendant {
			node := p.Commits[id]
			out = append(out, coremodel.Commit{ID: node.ID, Timestamp: node.Timestamp})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (p *Provider) ancestorSet(rev string) map[string]struct{} {
	set := make(map[string]struct{})
	queue := []string{rev}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, seen := set[id]; seen {
			continue
		}
		node, ok := p.Commits[id]
		if !ok {
			continue
		}
		set[id] = struct{}{}
		queue = append(queue, node.Parents...)
	}
	return set
}

func (p *Provider) LastModifyingCommit(path string, followRenames bool) (coremodel.Commit, error) {
	history, ok := p.FileHistory[path]
	if !ok || len(history) == 0 {
		return coremodel.Commit{}, tideerr.FileHistoryNotFound(path)
	}
	return p.ResolveCommit(history[0])
}

func (p *Provider) RootCommit() (coremodel.Commit, error) {
	set := p.ancestorSet(p.Head)
	var roots []CommitNode
	for id := range set {
		node := p.Commits[id]
		if len(node.Parents) == 0 {
			roots = append(roots, node)
		}
	}
	if len(roots) == 0 {
		return coremodel.Commit{}, tideerr.Internal("no root commit found")
	}
	sort.Slice(roots, func(i, j int) bool {
		if roots[i].Timestamp != roots[j].Timestamp {
			return roots[i].Timestamp < roots[j].Timestamp
		}
		return roots[i].ID < roots[j].ID
	})
	return coremodel.Commit{ID: roots[0].ID, Timestamp: roots[0].Timestamp}, nil
}

func (p *Provider) CurrentBranch() (string, bool, error) {
	if p.Branch == "" {
		return "", false, nil
	}
	return p.Branch, true, nil
}
