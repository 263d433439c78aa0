package transport

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOption      = errors.New("unknown transport option")
	ErrInvalidOptionValue = errors.New("invalid transport option value")
	ErrInvalidURL         = errors.New("invalid url")
	ErrHandleClosed       = errors.New("handle closed")
	ErrAlreadyPerformed   = errors.New("handle already performed")
	// ErrHTTPStatus is wrapped by the transfer error returned when fail-on-error
	// is set and the server answers with a status of 400 or above.
	ErrHTTPStatus       = errors.New("http status error")
	ErrCABundle         = errors.New("loading CA bundle")
	ErrTooManyRedirects = errors.New("maximum redirects followed")
	ErrFTPMethod        = errors.New("unsupported ftp operation")
)

// TransferError describes a failed transfer. Message follows curl's
// wording where an equivalent exists, so it reads the same to callers
// used to curl_error output.
type TransferError struct {
	Message string
	Err     error
}

func (e *TransferError) Error() string {
	return e.Message
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

func transferErr(err error, format string, args ...any) *TransferError {
	return &TransferError{
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}
