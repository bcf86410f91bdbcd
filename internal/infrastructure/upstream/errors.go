package upstream

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidURL  = errors.New("upstream_invalid_url")
	ErrTimeout     = errors.New("upstream_timeout")
	ErrUnavailable = errors.New("upstream_unavailable")
	ErrDecode      = errors.New("upstream_decode_failed")

	// ErrCanceled means the caller gave up, usually a client disconnect.
	// It still matches context.Canceled.
	ErrCanceled = fmt.Errorf("upstream_canceled: %w", context.Canceled)
)

// StatusError is a non-2xx answer. Description is the API's "detail" field when present.
type StatusError struct {
	StatusCode  int
	Description string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream error [%d]: %s", e.StatusCode, e.Description)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == 404
}
