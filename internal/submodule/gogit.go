package submodule

import (
	"context"
	"errors"

	"github.com/freqmod/gitfx/internal/git"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
)

// FromGoGit exposes the submodules of a go-git repository to the engine.
func FromGoGit(r *gogit.Repository) Repository {
	return &goGitRepository{repo: r}
}

type goGitRepository struct {
	repo *gogit.Repository
}

func (g *goGitRepository) Submodules() ([]Submodule, error) {
	w, err := g.repo.Worktree()
	if err != nil {
		return nil, &git.BackendError{Op: "open worktree", Err: err}
	}
	subs, err := w.Submodules()
	if err != nil {
		return nil, &git.BackendError{Op: "list submodules", Err: err}
	}

	out := make([]Submodule, 0, len(subs))
	for _, s := range subs {
		out = append(out, &goGitSubmodule{parent: g.repo, sub: s})
	}
	return out, nil
}

type goGitSubmodule struct {
	parent *gogit.Repository
	sub    *gogit.Submodule
}

func (s *goGitSubmodule) Name() string { return s.sub.Config().Name }
func (s *goGitSubmodule) Path() string { return s.sub.Config().Path }

// initialized mirrors go-git's own notion: the submodule has an entry in
// the parent's config.
func (s *goGitSubmodule) initialized() (bool, error) {
	cfg, err := s.parent.Config()
	if err != nil {
		return false, &git.BackendError{Op: "read config", Err: err}
	}
	_, ok := cfg.Submodules[s.Name()]
	return ok, nil
}

// repository opens the submodule's repository if it has been cloned.
// go-git's Submodule.Repository initializes an empty repository when the
// module storage has no HEAD yet, so that case is checked first.
func (s *goGitSubmodule) repository() (*gogit.Repository, bool, error) {
	ok, err := s.initialized()
	if err != nil || !ok {
		return nil, false, err
	}

	storer, err := s.parent.Storer.Module(s.Name())
	if err != nil {
		return nil, false, &git.BackendError{Op: "open module storage", Err: err}
	}
	if _, err := storer.Reference(plumbing.HEAD); err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, false, nil
		}
		return nil, false, &git.BackendError{Op: "read module HEAD", Err: err}
	}

	r, err := s.sub.Repository()
	if err != nil {
		return nil, false, &git.BackendError{Op: "open submodule " + s.Path(), Err: err}
	}
	return r, true, nil
}

func (s *goGitSubmodule) recorded() (plumbing.Hash, bool, error) {
	idx, err := s.parent.Storer.Index()
	if err != nil {
		return plumbing.ZeroHash, false, &git.BackendError{Op: "read index", Err: err}
	}
	e, err := idx.Entry(s.Path())
	if errors.Is(err, index.ErrEntryNotFound) {
		return plumbing.ZeroHash, false, nil
	}
	if err != nil {
		return plumbing.ZeroHash, false, &git.BackendError{Op: "read index", Err: err}
	}
	return e.Hash, true, nil
}

func (s *goGitSubmodule) Inspect() (Node, error) {
	n := Node{Name: s.Name(), Path: s.Path()}

	var err error
	n.IndexID, n.Status.InIndex, err = s.recorded()
	if err != nil {
		return n, err
	}

	r, ok, err := s.repository()
	if err != nil || !ok {
		return n, err
	}

	head, err := r.Head()
	switch {
	case err == nil:
		n.HeadID = head.Hash()
		n.WorkdirID = head.Hash()
	case !errors.Is(err, plumbing.ErrReferenceNotFound):
		return n, &git.BackendError{Op: "resolve HEAD of " + s.Path(), Err: err}
	}

	w, err := r.Worktree()
	if err != nil {
		return n, &git.BackendError{Op: "open worktree of " + s.Path(), Err: err}
	}
	st, err := w.Status()
	if err != nil {
		return n, &git.BackendError{Op: "status of " + s.Path(), Err: err}
	}
	for _, fs := range st {
		if fs.Worktree == gogit.Untracked {
			continue
		}
		if fs.Staging != gogit.Unmodified || fs.Worktree != gogit.Unmodified {
			n.Status.WorkdirModified = true
		}
		if fs.Worktree != gogit.Unmodified {
			n.Status.WorkdirIndexModified = true
		}
	}
	return n, nil
}

func (s *goGitSubmodule) Open() (Repository, bool, error) {
	r, ok, err := s.repository()
	if err != nil || !ok {
		return nil, false, err
	}
	return FromGoGit(r), true, nil
}

func (s *goGitSubmodule) Update(ctx context.Context) error {
	opts := &gogit.SubmoduleUpdateOptions{
		Init:              true,
		RecurseSubmodules: gogit.NoRecurseSubmodules,
	}

	// Skip the network when the recorded commit is already present.
	want, inIndex, err := s.recorded()
	if err != nil {
		return err
	}
	if r, ok, err := s.repository(); err == nil && ok && inIndex {
		if _, err := r.CommitObject(want); err == nil {
			opts.NoFetch = true
		}
	}

	if err := s.sub.UpdateContext(ctx, opts); err != nil {
		return &git.BackendError{Op: "fetch and checkout", Err: err}
	}
	return nil
}

func (s *goGitSubmodule) Checkout(hash plumbing.Hash) error {
	r, ok, err := s.repository()
	if err != nil {
		return err
	}
	if !ok {
		return &git.BackendError{Op: "checkout", Err: gogit.ErrSubmoduleNotInitialized}
	}
	w, err := r.Worktree()
	if err != nil {
		return &git.BackendError{Op: "open worktree of " + s.Path(), Err: err}
	}
	if err := w.Checkout(&gogit.CheckoutOptions{Hash: hash}); err != nil {
		return &git.BackendError{Op: "checkout", Err: err}
	}
	return nil
}
