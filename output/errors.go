package output

import (
	"errors"
	"fmt"
)

var (
	ErrSizeMismatch     = errors.New("size mismatch")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrCancelled        = errors.New("write cancelled")
	ErrUnknownAlgorithm = errors.New("unknown checksum algorithm")
)

type Error struct {
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}
