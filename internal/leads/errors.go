package leads

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyFile    = errors.New("file is empty")
	ErrNoContent    = errors.New("file has no content")
	ErrEmptyDataset = errors.New("csv has no data rows")
	ErrNoRows       = errors.New("no rows left after deduplication")
)

// InputError is a structural problem with an uploaded file. Callers should
// reject the whole request when they see one.
type InputError struct {
	Source string
	Err    error
}

func (e *InputError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	}
	return e.Err.Error()
}

func (e *InputError) Unwrap() error { return e.Err }

func inputError(source string, err error) error {
	return &InputError{Source: source, Err: err}
}
