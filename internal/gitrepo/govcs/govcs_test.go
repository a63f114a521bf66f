package govcs

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

// commitFile writes content to path in wt and commits it, returning the
// commit hash as a string.
func commitFile(t *testing.T, repo *gogit.Repository, path, content string, when time.Time) string {
	t.Helper()
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	f, err := wt.Filesystem.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if _, err := f.Write([]byte(content)); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	f.Close()
	if _, err := wt.Add(path); err != nil {
		t.Fatalf("add %s: %v", path, err)
	}
	hash, err := wt.Commit("commit "+path, &gogit.CommitOptions{
		Author: &object.Signature{Name: "tidemark-test", Email: "test@example.com", When: when},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return hash.String()
}

// TestListRemoteTags_StagesUnderPrivateNamespaceWithoutTouchingLocalTags exercises
// the real go-git fetch/RefSpec/Prune path (govcs.go's trickiest binding):
// an on-disk origin repo is tagged, a separate in-memory repo fetches that
// tag under refs/tidemark/remote-tags/, and the result comes back tagged
// Source=Remote without touching the local repo's own refs/tags namespace.
func TestListRemoteTags_StagesUnderPrivateNamespaceWithoutTouchingLocalTags(t *testing.T) {
	originDir := t.TempDir()
	origin, err := gogit.PlainInit(originDir, false)
	if err != nil {
		t.Fatalf("PlainInit origin: %v", err)
	}
	commitFile(t, origin, "a.txt", "v1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	head, err := origin.Head()
	if err != nil {
		t.Fatalf("origin head: %v", err)
	}
	if _, err := origin.CreateTag("v1.0.0", head.Hash(), nil); err != nil {
		t.Fatalf("create tag: %v", err)
	}

	localRepo, err := gogit.Init(memory.NewStorage(), memfs.New())
	if err != nil {
		t.Fatalf("init local: %v", err)
	}
	if _, err := localRepo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{originDir},
	}); err != nil {
		t.Fatalf("create remote: %v", err)
	}

	r := &Repo{repo: localRepo, repoRoot: "/"}

	tags, err := r.ListRemoteTags("origin", "")
	if err != nil {
		t.Fatalf("ListRemoteTags: %v", err)
	}
	if len(tags) != 1 {
		t.Fatalf("got %d tags, want 1: %+v", len(tags), tags)
	}
	if tags[0].Name != "v1.0.0" {
		t.Fatalf("tag name = %s, want v1.0.0", tags[0].Name)
	}
	if tags[0].CommitID != head.Hash().String() {
		t.Fatalf("tag commit = %s, want %s", tags[0].CommitID, head.Hash())
	}

	localTags, err := r.ListLocalTags("")
	if err != nil {
		t.Fatalf("ListLocalTags: %v", err)
	}
	if len(localTags) != 0 {
		t.Fatalf("remote fetch leaked into refs/tags: %+v", localTags)
	}
}

// TestListRemoteTags_PrefixFilter confirms only tags whose name starts
// with prefix are staged and returned.
func TestListRemoteTags_PrefixFilter(t *testing.T) {
	originDir := t.TempDir()
	origin, err := gogit.PlainInit(originDir, false)
	if err != nil {
		t.Fatalf("PlainInit origin: %v", err)
	}
	commitFile(t, origin, "a.txt", "v1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	head, err := origin.Head()
	if err != nil {
		t.Fatalf("origin head: %v", err)
	}
	if _, err := origin.CreateTag("release-1.0.0", head.Hash(), nil); err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if _, err := origin.CreateTag("snapshot-1.0.0", head.Hash(), nil); err != nil {
		t.Fatalf("create tag: %v", err)
	}

	localRepo, err := gogit.Init(memory.NewStorage(), memfs.New())
	if err != nil {
		t.Fatalf("init local: %v", err)
	}
	if _, err := localRepo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{originDir},
	}); err != nil {
		t.Fatalf("create remote: %v", err)
	}

	r := &Repo{repo: localRepo, repoRoot: "/"}

	tags, err := r.ListRemoteTags("origin", "release-")
	if err != nil {
		t.Fatalf("ListRemoteTags: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "release-1.0.0" {
		t.Fatalf("got %+v, want only release-1.0.0", tags)
	}
}
