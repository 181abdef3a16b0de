package logrefs

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/freqmod/gitfx/internal/git"
)

// Options configures one logrefs invocation.
type Options struct {
	Filter
	// Index selects an entry without prompting when non-nil.
	Index        *int
	MaxPrintRefs int
}

// Runner carries what a logrefs invocation talks to.
type Runner struct {
	Repo *git.Repository
	Out  io.Writer
	// Prompt asks for an index; nil means no interactive input is available.
	Prompt PromptFunc
	// Highlight styles the current ref name; nil leaves it plain.
	Highlight func(string) string
	Logger    *slog.Logger
}

// Run ranks the references, prints the list, resolves the selection and
// checks the selected reference out. The list is printed before anything is
// changed, so it is visible even when the checkout fails.
func (r *Runner) Run(opts Options) error {
	if opts.Index == nil && r.Prompt == nil {
		return ErrIndexRequired
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	head, err := r.Repo.Head()
	if err != nil {
		return err
	}

	ranked, err := Rank(r.Repo, head, opts.Filter, logger)
	if err != nil {
		return err
	}

	if !head.Detached {
		fmt.Fprintf(r.Out, "Current ref: %s\n", r.highlight(head.Short()))
	}
	listed := Print(r.Out, ranked, opts.MaxPrintRefs)

	index, ok, err := Resolve(r.Out, len(ranked), listed, opts.Index, r.Prompt, logger)
	if err != nil {
		return err
	}
	if !ok {
		logger.Debug("nothing selected")
		return nil
	}

	target := ranked[index]
	logger.Debug("checking out", "ref", target.Name, "index", index)
	return r.Repo.Checkout(target.Name.String())
}

// Print writes at most limit entries as "<index> <short name>: <message>"
// and returns how many it wrote. A negative limit prints everything.
func Print(out io.Writer, ranked []RankedRef, limit int) int {
	n := len(ranked)
	if limit >= 0 && limit < n {
		n = limit
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(out, "%03d %s: %s\n", i, ranked[i].Short, ranked[i].Latest.Message)
	}
	return n
}

func (r *Runner) highlight(s string) string {
	if r.Highlight == nil {
		return s
	}
	return r.Highlight(s)
}
