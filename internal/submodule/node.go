// Package submodule brings submodule working directories in line with the
// commits recorded in their parent's index, recursively, without ever
// discarding uncommitted work.
package submodule

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
)

// Status holds the flags the sync decisions are made from.
type Status struct {
	// InIndex is set when the parent's index records a commit for the submodule.
	InIndex bool
	// WorkdirModified is set when tracked files differ from the submodule's
	// own HEAD, staged or not.
	WorkdirModified bool
	// WorkdirIndexModified is set when tracked files differ from the
	// submodule's own index.
	WorkdirIndexModified bool
}

// Node is a submodule as observed at one point of a walk.
type Node struct {
	Name string
	Path string
	// IndexID is the commit recorded in the parent's index.
	IndexID plumbing.Hash
	// WorkdirID is the commit checked out in the submodule's working directory.
	WorkdirID plumbing.Hash
	// HeadID is the commit the submodule's own HEAD resolves to.
	HeadID plumbing.Hash
	Status Status
}

// OutOfDate reports whether the checked out commit differs from the recorded one.
func (n Node) OutOfDate() bool {
	return n.IndexID != n.WorkdirID
}

// Repository is a repository whose direct submodules can be listed.
type Repository interface {
	Submodules() ([]Submodule, error)
}

// Submodule is the backend view of one direct submodule.
type Submodule interface {
	Name() string
	Path() string
	// Inspect reads the submodule's current state without changing anything.
	Inspect() (Node, error)
	// Open returns the submodule as a repository for recursion; ok is false
	// when there is no checked out repository yet.
	Open() (repo Repository, ok bool, err error)
	// Update fetches if needed and checks out the commit recorded in the
	// parent's index, initializing the submodule first when necessary.
	Update(ctx context.Context) error
	// Checkout moves the submodule's HEAD and work tree to hash.
	Checkout(hash plumbing.Hash) error
}

// DirtyPolicy selects what counts as uncommitted local changes.
type DirtyPolicy string

const (
	// DirtyAgainstHead treats anything that differs from the submodule's
	// HEAD, staged or unstaged, as local changes.
	DirtyAgainstHead DirtyPolicy = "head"
	// DirtyAgainstIndex only treats unstaged work tree edits as local changes.
	DirtyAgainstIndex DirtyPolicy = "index"
)

// ParseDirtyPolicy parses a policy name. The empty string selects DirtyAgainstHead.
func ParseDirtyPolicy(s string) (DirtyPolicy, error) {
	switch DirtyPolicy(s) {
	case "", DirtyAgainstHead:
		return DirtyAgainstHead, nil
	case DirtyAgainstIndex:
		return DirtyAgainstIndex, nil
	}
	return "", fmt.Errorf("unknown dirty check %q (want %q or %q)", s, DirtyAgainstHead, DirtyAgainstIndex)
}

// Dirty reports whether s carries local changes under the policy.
func (p DirtyPolicy) Dirty(s Status) bool {
	if p == DirtyAgainstIndex {
		return s.WorkdirIndexModified
	}
	return s.WorkdirModified || s.WorkdirIndexModified
}
