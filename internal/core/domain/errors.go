package domain

import (
	"errors"
	"fmt"
)

var (
	ErrExtraction   = errors.New("transcript extraction failed")
	ErrCredential   = errors.New("model credential missing or invalid")
	ErrService      = errors.New("analysis service failure")
	ErrInvalidInput = errors.New("invalid input")
	ErrTooLarge     = errors.New("transcript exceeds model input limit")
	ErrTemporary    = errors.New("temporary failure")
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
