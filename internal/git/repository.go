// Package git wraps the go-git repository engine with the handful of
// operations gitfx needs: opening a repository from the environment,
// inspecting HEAD and references, reaching the private git directory, and
// checking out a revision.
package git

import (
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// OpenOptions selects which repository to open.
type OpenOptions struct {
	// WorkDir is where the search for a repository starts, or the work tree
	// when GitDir is set. Defaults to the current directory.
	WorkDir string
	// GitDir, when set, is the repository's private directory and disables
	// discovery.
	GitDir string
}

// OptionsFromEnv fills the options from GIT_DIR and GIT_WORK_TREE the way
// git itself does, leaving explicitly set fields alone.
func OptionsFromEnv(o OpenOptions) OpenOptions {
	if o.GitDir == "" {
		o.GitDir = os.Getenv("GIT_DIR")
	}
	if o.WorkDir == "" {
		o.WorkDir = os.Getenv("GIT_WORK_TREE")
	}
	return o
}

// Repository is an open repository handle.
type Repository struct {
	Repo *gogit.Repository
}

// Head describes where HEAD points.
type Head struct {
	// Name is the branch HEAD is attached to; empty when detached.
	Name     plumbing.ReferenceName
	Hash     plumbing.Hash
	Detached bool
}

// Short returns the shorthand of the attached branch.
func (h Head) Short() string {
	return h.Name.Short()
}

// Open opens the repository selected by o.
func Open(o OpenOptions) (*Repository, error) {
	workDir := o.WorkDir
	if workDir == "" {
		workDir = "."
	}

	if o.GitDir == "" {
		r, err := gogit.PlainOpenWithOptions(workDir, &gogit.PlainOpenOptions{
			DetectDotGit:          true,
			EnableDotGitCommonDir: true,
		})
		if err != nil {
			return nil, backendErr(fmt.Sprintf("open repository at %s", workDir), err)
		}
		return New(r), nil
	}

	st := filesystem.NewStorage(osfs.New(o.GitDir), cache.NewObjectLRUDefault())
	r, err := gogit.Open(st, osfs.New(workDir))
	if err != nil {
		return nil, backendErr(fmt.Sprintf("open repository with git dir %s", o.GitDir), err)
	}
	return New(r), nil
}

// New wraps an already opened go-git repository.
func New(r *gogit.Repository) *Repository {
	return &Repository{Repo: r}
}

// GitDir returns the filesystem rooted at the repository's private directory.
func (r *Repository) GitDir() (billy.Filesystem, error) {
	fsStorer, ok := r.Repo.Storer.(interface{ Filesystem() billy.Filesystem })
	if !ok {
		return nil, ErrNoGitDir
	}
	return fsStorer.Filesystem(), nil
}

// Head reports the current HEAD. An unborn branch counts as attached.
func (r *Repository) Head() (Head, error) {
	ref, err := r.Repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return Head{}, backendErr("read HEAD", err)
	}

	if ref.Type() != plumbing.SymbolicReference {
		return Head{Hash: ref.Hash(), Detached: true}, nil
	}

	h := Head{Name: ref.Target()}
	if resolved, err := r.Repo.Reference(plumbing.HEAD, true); err == nil {
		h.Hash = resolved.Hash()
	}
	return h, nil
}

// References lists every reference except HEAD itself, in the order the
// backend enumerates them.
func (r *Repository) References() ([]*plumbing.Reference, error) {
	iter, err := r.Repo.References()
	if err != nil {
		return nil, backendErr("list references", err)
	}

	var refs []*plumbing.Reference
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name() == plumbing.HEAD {
			return nil
		}
		refs = append(refs, ref)
		return nil
	})
	if err != nil {
		return nil, backendErr("list references", err)
	}
	return refs, nil
}
