// Package testutil builds go-git repositories for tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// Repo is a repository under test together with its private directory and
// work tree filesystems.
type Repo struct {
	t    testing.TB
	Repo *gogit.Repository
	Dot  billy.Filesystem
	Work billy.Filesystem
}

// NewMemRepo initializes an empty repository held entirely in memory but
// stored through the filesystem storer, so reflog files can be placed next
// to the refs.
func NewMemRepo(t testing.TB) *Repo {
	t.Helper()

	return NewRepoAt(t, memfs.New(), memfs.New())
}

// NewRepoAt initializes an empty repository storing its objects and refs in
// dot and checking out into work.
func NewRepoAt(t testing.TB, dot, work billy.Filesystem) *Repo {
	t.Helper()

	r, err := gogit.Init(filesystem.NewStorage(dot, cache.NewObjectLRUDefault()), work)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	return &Repo{t: t, Repo: r, Dot: dot, Work: work}
}

// NewDiskRepo initializes an empty repository at dir.
func NewDiskRepo(t testing.TB, dir string) *Repo {
	t.Helper()

	r, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	return &Repo{t: t, Repo: r, Dot: osfs.New(filepath.Join(dir, ".git")), Work: osfs.New(dir)}
}

// Commit writes file with content, stages it and commits on the current branch.
func (r *Repo) Commit(file, content, msg string) plumbing.Hash {
	r.t.Helper()

	if err := util.WriteFile(r.Work, file, []byte(content), 0644); err != nil {
		r.t.Fatalf("write %s: %v", file, err)
	}
	w, err := r.Repo.Worktree()
	if err != nil {
		r.t.Fatalf("worktree: %v", err)
	}
	if _, err := w.Add(file); err != nil {
		r.t.Fatalf("add %s: %v", file, err)
	}
	h, err := w.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Tester", Email: "tester@example.com", When: time.Unix(1700000000, 0)},
	})
	if err != nil {
		r.t.Fatalf("commit: %v", err)
	}
	return h
}

// SetRef points name at h, creating it if needed.
func (r *Repo) SetRef(name plumbing.ReferenceName, h plumbing.Hash) {
	r.t.Helper()
	if err := r.Repo.Storer.SetReference(plumbing.NewHashReference(name, h)); err != nil {
		r.t.Fatalf("set %s: %v", name, err)
	}
}

// WriteFile overwrites a work tree file without staging it.
func (r *Repo) WriteFile(file, content string) {
	r.t.Helper()
	if err := util.WriteFile(r.Work, file, []byte(content), 0644); err != nil {
		r.t.Fatalf("write %s: %v", file, err)
	}
}

// WriteReflog replaces the raw log of name with lines.
func (r *Repo) WriteReflog(name plumbing.ReferenceName, lines ...string) {
	r.t.Helper()

	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := util.WriteFile(r.Dot, r.Dot.Join("logs", name.String()), []byte(content), 0644); err != nil {
		r.t.Fatalf("write reflog %s: %v", name, err)
	}
}

// Head returns the reference HEAD points at without resolving it.
func (r *Repo) Head() *plumbing.Reference {
	r.t.Helper()
	ref, err := r.Repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		r.t.Fatalf("read HEAD: %v", err)
	}
	return ref
}

// ReflogLine formats one raw reflog line as git writes it.
func ReflogLine(from, to plumbing.Hash, seconds int64, msg string) string {
	return fmt.Sprintf("%s %s Tester <tester@example.com> %d +0000\t%s", from, to, seconds, msg)
}
