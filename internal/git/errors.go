package git

import "errors"

var (
	// ErrReferenceResolution is returned when a name cannot be turned into a
	// usable reference or object.
	ErrReferenceResolution = errors.New("cannot resolve reference")

	// ErrNoGitDir is returned for repositories whose storage is not backed by
	// a private directory on a filesystem, such as pure in-memory storage.
	ErrNoGitDir = errors.New("repository storage has no git directory")
)

// BackendError wraps a failure reported by the repository engine itself:
// I/O errors, checkout conflicts, fetch failures during submodule updates.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func backendErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Err: err}
}
