// Package reflog reads reference logs straight from a repository's private
// directory. go-git keeps no reflog of its own, so the raw files written by
// git are the only source for the old/new id pair, the committer identity
// and the literal timezone offset of each transition.
package reflog

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrMalformedLine is returned for any log line that does not match the
// reflog grammar, including numeric fields that fail to parse.
var ErrMalformedLine = errors.New("reflog: malformed line")

// Record is one logged transition of a reference.
type Record struct {
	OldID     plumbing.Hash
	NewID     plumbing.Hash
	Committer object.Signature
	// Offset is the committer's UTC offset in minutes, as written in the log.
	Offset  int
	Message string
}

// When returns the transition time in the committer's own timezone.
func (r Record) When() time.Time {
	return r.Committer.When
}

// Created reports whether the reference did not exist before this transition.
func (r Record) Created() bool {
	return r.OldID.IsZero()
}

// linePattern matches a raw reflog line:
// "<old> <new> <name> <<email>> <seconds> <+|-><hhmm>\t<message>"
var linePattern = regexp.MustCompile(
	`^([0-9a-f]{40}) ([0-9a-f]{40}) ([^<]+) <([^>]+)> ([0-9]+) ([+-])([0-9]{2})([0-9]{2})\t(.*)$`,
)

// Parse parses a single reflog line. It never panics on bad input.
func Parse(line string) (Record, error) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return Record{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	seconds, err := strconv.ParseInt(m[5], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: timestamp %q", ErrMalformedLine, m[5])
	}
	hours, errH := strconv.Atoi(m[7])
	minutes, errM := strconv.Atoi(m[8])
	if errH != nil || errM != nil {
		return Record{}, fmt.Errorf("%w: offset %q", ErrMalformedLine, m[6]+m[7]+m[8])
	}

	offset := hours*60 + minutes
	if m[6] == "-" {
		offset = -offset
	}

	return Record{
		OldID: plumbing.NewHash(m[1]),
		NewID: plumbing.NewHash(m[2]),
		Committer: object.Signature{
			Name:  m[3],
			Email: m[4],
			When:  time.Unix(seconds, 0).In(time.FixedZone("", offset*60)),
		},
		Offset:  offset,
		Message: m[9],
	}, nil
}
