package vocabulary

import (
	"errors"
	"fmt"
)

var (
	ErrNoSession       = errors.New("no session in progress")
	ErrSessionActive   = errors.New("a session is already in progress")
	ErrUnknownWord     = errors.New("unknown word")
	ErrAlreadyAnswered = errors.New("word already answered in this session")
	ErrNoDueWords      = errors.New("no words due for review")
	ErrDuplicateWord   = errors.New("word already in vocabulary")
	ErrEmptyTerm       = errors.New("empty word")
)

// StateError reports an operation that does not fit the current vocabulary or
// session state. Err is one of the Err* sentinels.
type StateError struct {
	Op     string
	WordID string
	Err    error
}

func (e *StateError) Error() string {
	if e.WordID != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.WordID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }
