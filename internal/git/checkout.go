package git

import (
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Checkout moves HEAD and the work tree to rev, which may be a full
// reference name, a branch shorthand, an object id or any revision
// expression the backend understands.
//
// References are checked out by name so HEAD attaches to branches and
// detaches everywhere else; anything else is resolved to a commit and checked
// out detached. Nothing is validated up front: unstaged changes that would be
// overwritten come back as the backend's error.
func (r *Repository) Checkout(rev string) error {
	w, err := r.Repo.Worktree()
	if err != nil {
		return backendErr("open worktree", err)
	}

	opts := &gogit.CheckoutOptions{}
	if name, ok := r.lookupRef(rev); ok {
		opts.Branch = name
	} else {
		hash, err := r.Repo.ResolveRevision(plumbing.Revision(rev))
		if err != nil {
			return fmt.Errorf("%w %q: %v", ErrReferenceResolution, rev, err)
		}
		opts.Hash = *hash
	}

	if err := w.Checkout(opts); err != nil {
		return backendErr(fmt.Sprintf("checkout %s", rev), err)
	}
	return nil
}

// lookupRef tries rev as a full reference name, then as a local branch.
func (r *Repository) lookupRef(rev string) (plumbing.ReferenceName, bool) {
	for _, name := range []plumbing.ReferenceName{
		plumbing.ReferenceName(rev),
		plumbing.NewBranchReferenceName(rev),
	} {
		if name == plumbing.HEAD {
			continue
		}
		if _, err := r.Repo.Reference(name, false); err == nil {
			return name, true
		}
	}
	return "", false
}
