package util

import (
	"errors"
	"strings"
)

// ErrPublic is an error whose message can be shown to end users as is. It
// marks conditions the user can correct, as opposed to internal failures.
type ErrPublic string

func (e ErrPublic) Error() string {
	return string(e)
}

// IsPublic reports whether err or any error it wraps is an ErrPublic.
func IsPublic(err error) bool {
	var pub ErrPublic
	return errors.As(err, &pub)
}

func ConcatErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	filtered := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err.Error())
		}
	}

	if len(filtered) == 0 {
		return nil
	}

	return errors.New(strings.Join(filtered, "; "))
}
