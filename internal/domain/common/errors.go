package common

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLocalFile signals that a submission referenced a document path
	// that does not exist or cannot be read; the pipeline cannot proceed
	// without a valid local file.
	ErrNoLocalFile = errors.New("document file missing or unreadable")

	ErrNotFound   = errors.New("requested item not found")
	ErrBadRequest = errors.New("bad request")
)

// CollaboratorError marks an infrastructure failure of an external
// collaborator (ledger store, archive, review queue). It is fatal for the
// current submission only; recoverable extraction conditions never use it.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// NewCollaboratorError wraps err with the failing collaborator's name.
func NewCollaboratorError(collaborator string, err error) *CollaboratorError {
	return &CollaboratorError{Collaborator: collaborator, Err: err}
}

// AsCollaboratorError reports whether err is (or wraps) a collaborator
// failure, so callers can tell "no match" from "backend down".
func AsCollaboratorError(err error) (*CollaboratorError, bool) {
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
