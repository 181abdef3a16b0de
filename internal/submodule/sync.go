package submodule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
)

// ErrLocalChanges aborts a sync that would otherwise touch a submodule with
// uncommitted changes.
var ErrLocalChanges = errors.New("aborting due to local changes in submodule")

// LocalChangesError names the submodule that blocked the sync.
type LocalChangesError struct {
	// Path is relative to the top-level repository, through nested submodules.
	Path string
}

func (e *LocalChangesError) Error() string {
	return fmt.Sprintf("%v %s", ErrLocalChanges, e.Path)
}

func (e *LocalChangesError) Is(target error) bool {
	return target == ErrLocalChanges
}

// Options controls a sync.
type Options struct {
	// ForceCommit checks out the recorded commit even when the submodule has
	// local changes, as long as the submodule is recorded in the index. A
	// submodule whose HEAD already is the recorded commit is never touched.
	ForceCommit bool
	Dirty       DirtyPolicy
}

// Engine runs the two-phase submodule sync.
type Engine struct {
	opts   Options
	logger *slog.Logger
}

// NewEngine creates an engine. A nil logger discards.
func NewEngine(opts Options, logger *slog.Logger) *Engine {
	if opts.Dirty == "" {
		opts.Dirty = DirtyAgainstHead
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{opts: opts, logger: logger}
}

// Sync validates the whole submodule tree of repo and, only if nothing
// blocks, updates it.
func (e *Engine) Sync(ctx context.Context, repo Repository) error {
	if err := e.Validate(repo); err != nil {
		return err
	}
	return e.Apply(ctx, repo)
}

// Validate walks the submodule tree depth first without changing anything
// and fails with a *LocalChangesError on the first submodule that may not be
// touched.
func (e *Engine) Validate(repo Repository) error {
	return e.validate(repo, "")
}

// Apply walks the submodule tree and updates every submodule whose checked
// out commit is not the recorded one. Each submodule is validated again right
// before it is updated since earlier updates may have changed the tree.
func (e *Engine) Apply(ctx context.Context, repo Repository) error {
	return e.apply(ctx, repo, "")
}

func (e *Engine) validate(repo Repository, prefix string) error {
	subs, err := repo.Submodules()
	if err != nil {
		return err
	}

	for _, sub := range subs {
		where := path.Join(prefix, sub.Path())

		nested, ok, err := sub.Open()
		if err != nil {
			return err
		}
		if ok {
			if err := e.validate(nested, where); err != nil {
				return err
			}
		}

		node, err := sub.Inspect()
		if err != nil {
			return err
		}
		if err := e.check(node, where); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) apply(ctx context.Context, repo Repository, prefix string) error {
	subs, err := repo.Submodules()
	if err != nil {
		return err
	}

	for _, sub := range subs {
		where := path.Join(prefix, sub.Path())

		node, err := sub.Inspect()
		if err != nil {
			return err
		}
		if err := e.check(node, where); err != nil {
			return err
		}

		if e.needsUpdate(node) {
			if err := e.update(ctx, sub, node, where); err != nil {
				return err
			}
		}

		// Submodules the parent does not record are left alone, nested ones included.
		if !node.Status.InIndex {
			continue
		}
		nested, ok, err := sub.Open()
		if err != nil {
			return err
		}
		if ok {
			if err := e.apply(ctx, nested, where); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) update(ctx context.Context, sub Submodule, node Node, where string) error {
	if node.HeadID == node.IndexID && !node.IndexID.IsZero() {
		e.logger.Debug("submodule already at recorded commit", "path", where, "commit", node.IndexID)
		return nil
	}

	e.logger.Debug("updating submodule", "path", where, "from", node.WorkdirID, "to", node.IndexID)
	if err := sub.Update(ctx); err != nil {
		return fmt.Errorf("update submodule %s: %w", where, err)
	}

	after, err := sub.Inspect()
	if err != nil {
		return err
	}
	if after.HeadID != node.IndexID {
		e.logger.Debug("submodule HEAD still differs after update", "path", where, "head", after.HeadID)
		if err := sub.Checkout(node.IndexID); err != nil {
			return fmt.Errorf("checkout %s in submodule %s: %w", node.IndexID, where, err)
		}
	}
	return nil
}

// check applies the local changes rule to one node.
func (e *Engine) check(n Node, where string) error {
	guarded := !n.Status.InIndex || (!e.opts.ForceCommit && n.OutOfDate())
	if guarded && e.opts.Dirty.Dirty(n.Status) {
		e.logger.Debug("submodule has local changes", "path", where, "status", n.Status)
		return &LocalChangesError{Path: where}
	}
	return nil
}

func (e *Engine) needsUpdate(n Node) bool {
	return n.Status.InIndex && (e.opts.ForceCommit || n.OutOfDate())
}
