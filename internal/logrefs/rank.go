// Package logrefs lists references by their most recent reflog activity and
// switches to the one the user picks.
package logrefs

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/freqmod/gitfx/internal/git"
	"github.com/freqmod/gitfx/internal/reflog"
	"github.com/go-git/go-git/v5/plumbing"
)

// DefaultMaxPrintRefs bounds the printed list when no limit is configured.
const DefaultMaxPrintRefs = 20

// RankedRef is a reference paired with the latest record of its log.
type RankedRef struct {
	Name   plumbing.ReferenceName
	Short  string
	Latest reflog.Record
}

// Filter decides which references take part in the ranking.
type Filter struct {
	IncludeRemotes bool
	IncludeTags    bool
}

// stashRef holds the stash stack; its log lists stash entries, not moves.
const stashRef plumbing.ReferenceName = "refs/stash"

// Keep reports whether ref survives the filter. The stash and the branch
// HEAD is attached to are always dropped; with a detached HEAD nothing is
// dropped for it.
func (f Filter) Keep(name plumbing.ReferenceName, head git.Head) bool {
	switch {
	case name == stashRef:
		return false
	case !f.IncludeRemotes && name.IsRemote():
		return false
	case !f.IncludeTags && name.IsTag():
		return false
	case !head.Detached && name == head.Name:
		return false
	}
	return true
}

// Rank enumerates the repository's references, drops the filtered ones and
// those without a log, and orders the rest by the time of their latest log
// record, newest first. Equal times keep enumeration order.
//
// A malformed final log line fails the whole ranking.
func Rank(repo *git.Repository, head git.Head, f Filter, logger *slog.Logger) ([]RankedRef, error) {
	refs, err := repo.References()
	if err != nil {
		return nil, err
	}
	gitDir, err := repo.GitDir()
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedRef, 0, len(refs))
	for _, ref := range refs {
		name := ref.Name()
		if !f.Keep(name, head) {
			logger.Debug("ref filtered", "ref", name)
			continue
		}

		iter, ok, err := reflog.Open(gitDir, name)
		if err != nil {
			return nil, &git.BackendError{Op: "read reflog", Err: err}
		}
		if !ok {
			logger.Debug("ref has no reflog", "ref", name)
			continue
		}

		rec, found, err := iter.Last()
		if err != nil {
			return nil, fmt.Errorf("rank %s: %w", name, err)
		}
		if !found {
			logger.Debug("ref has an empty reflog", "ref", name)
			continue
		}

		ranked = append(ranked, RankedRef{Name: name, Short: name.Short(), Latest: rec})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Latest.When().Unix() > ranked[j].Latest.When().Unix()
	})
	return ranked, nil
}
