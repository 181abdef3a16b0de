package logrefs

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/freqmod/gitfx/internal/git"
)

// PromptMarker is shown when asking for an index.
const PromptMarker = ">> "

var (
	// ErrIndexOutOfRange is returned for an explicit index past the ranked list.
	ErrIndexOutOfRange = fmt.Errorf("index out of range: %w", git.ErrReferenceResolution)

	// ErrIndexRequired is returned when there is neither an explicit index
	// nor a way to ask for one.
	ErrIndexRequired = errors.New("no --index given and no interactive terminal to ask for one")
)

// PromptFunc reads one line of text from the user. Any error, including end
// of input or an aborted prompt, means the user entered nothing.
type PromptFunc func(prompt string) (string, error)

// Resolve picks the index of the ref to switch to among n ranked refs, of
// which the first listed were shown to the user.
//
// An explicit index is used as given and must be in range. Otherwise the user
// is asked once: an empty answer picks the first entry if it was shown, a
// number in range picks that entry, and anything else is reported on out and
// picks nothing.
func Resolve(out io.Writer, n, listed int, explicit *int, prompt PromptFunc, logger *slog.Logger) (int, bool, error) {
	if explicit != nil {
		if *explicit < 0 || *explicit >= n {
			return 0, false, fmt.Errorf("%w: %d, it has to be less than %d", ErrIndexOutOfRange, *explicit, n)
		}
		return *explicit, true, nil
	}
	if prompt == nil {
		return 0, false, ErrIndexRequired
	}

	line, err := prompt(PromptMarker)
	if err != nil {
		logger.Debug("no index entered", "error", err)
		return 0, false, nil
	}

	line = strings.TrimSpace(line)
	if line == "" {
		if listed == 0 {
			logger.Debug("empty answer with nothing listed")
		}
		return 0, n > 0 && listed > 0, nil
	}

	index, err := strconv.ParseUint(line, 10, 0)
	if err != nil {
		fmt.Fprintln(out, "Could not parse number")
		return 0, false, nil
	}
	if index >= uint64(n) {
		fmt.Fprintf(out, "Number %d not in range, it has to be less than %d\n", index, n)
		return 0, false, nil
	}
	return int(index), true, nil
}
