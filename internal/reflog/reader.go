package reflog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

const (
	logsDir = "logs"

	// git does not bound message length, so allow long lines.
	maxLineSize = 1 << 20
)

// Iter is a lazy, single-pass sequence over the records of one reference log.
// Each line is parsed when it is reached; a malformed line is reported at its
// position and does not end iteration for the caller that wants to continue.
type Iter struct {
	name    plumbing.ReferenceName
	file    billy.File
	scanner *bufio.Scanner
	line    int
}

// Path returns the location of a reference's log relative to the repository's
// private directory.
func Path(gitDir billy.Filesystem, name plumbing.ReferenceName) string {
	return gitDir.Join(logsDir, name.String())
}

// Open opens the log of the named reference inside gitDir. When no log exists
// for the reference it returns ok == false and a nil error; any other failure
// to open the file is returned as an error.
func Open(gitDir billy.Filesystem, name plumbing.ReferenceName) (iter *Iter, ok bool, err error) {
	f, err := gitDir.Open(Path(gitDir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open reflog for %s: %w", name, err)
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	return &Iter{name: name, file: f, scanner: sc}, true, nil
}

// Next returns the next record. It returns io.EOF once the log is exhausted.
func (it *Iter) Next() (Record, error) {
	text, err := it.nextLine()
	if err != nil {
		return Record{}, err
	}
	return it.parse(text)
}

// ForEach calls cb for each record in log order. Iteration stops at the first
// malformed line or I/O error, or silently when cb returns storer.ErrStop.
func (it *Iter) ForEach(cb func(Record) error) error {
	defer it.Close()

	for {
		rec, err := it.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := cb(rec); err != nil {
			if err == storer.ErrStop {
				return nil
			}
			return err
		}
	}
}

// Last returns the final, most recent record of the log. Earlier lines are
// skipped without being parsed. ok is false when the log has no lines.
func (it *Iter) Last() (rec Record, ok bool, err error) {
	defer it.Close()

	var last string
	var seen bool
	for {
		text, err := it.nextLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Record{}, false, err
		}
		last, seen = text, true
	}
	if !seen {
		return Record{}, false, nil
	}

	rec, err = it.parse(last)
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// Close releases the underlying file. It is safe to call more than once.
func (it *Iter) Close() error {
	if it.file == nil {
		return nil
	}
	err := it.file.Close()
	it.file = nil
	return err
}

func (it *Iter) nextLine() (string, error) {
	if it.file == nil {
		return "", io.EOF
	}
	if !it.scanner.Scan() {
		if err := it.scanner.Err(); err != nil {
			return "", fmt.Errorf("read reflog for %s: %w", it.name, err)
		}
		return "", io.EOF
	}
	it.line++
	return it.scanner.Text(), nil
}

func (it *Iter) parse(text string) (Record, error) {
	rec, err := Parse(text)
	if err != nil {
		return Record{}, fmt.Errorf("reflog for %s, line %d: %w", it.name, it.line, err)
	}
	return rec, nil
}
