package suggest

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoLoader is returned by New when no loader is given.
var ErrNoLoader = errors.New("suggest: loader is required")

// LoadError is a loader failure that was not a cancellation.
type LoadError struct {
	Token string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("suggest: loading candidates for %q: %v", e.Token, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsCancellation reports whether err only signals an abandoned load.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
