package api

import (
	"errors"
	"fmt"
)

// NetworkError reports that a call could not complete: DNS, connection,
// timeout or a broken body. Requests failing this way are safe to queue.
type NetworkError struct {
	Err    error
	Action string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error on %s: %v", e.Action, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is or wraps a *NetworkError
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
