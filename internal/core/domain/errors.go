package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedType = errors.New("unsupported media type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrEmptyName       = errors.New("empty file name")
	ErrTaskNotFound    = errors.New("upload task not found")
	ErrRemoteRejected  = errors.New("remote rejected")
	ErrTemporary       = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// IsValidation reports whether err comes from the pre-flight file gate,
// as opposed to the remote transport.
func IsValidation(err error) bool {
	return errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrEmptyName)
}
