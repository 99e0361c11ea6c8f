package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// Ledger conflict and validation outcomes. These are expected results of
// normal operation, never process-fatal.
var (
	ErrorDuplicateRecord    = errors.New("duplicate record")
	ErrorInvalidBarcode     = errors.New("invalid barcode")
	ErrorAlreadyDispatched  = errors.New("item already dispatched")
	ErrorOutOfStock         = errors.New("no stock available to dispatch")
	ErrorInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError marks rejected input. Handlers return its message with
// a 400; every other unexpected error stays generic to the caller.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func NewValidationError(msg string) error {
	return &ValidationError{msg: msg}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
