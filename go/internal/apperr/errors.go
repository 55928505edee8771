package apperr

import (
	"errors"
	"net/http"
)

// Error kinds returned by the draft engine. Callers wrap them with context,
// e.g. fmt.Errorf("%w: draft already complete", apperr.ErrBadRequest).
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
)

// Kind returns the sentinel err wraps, or nil for infrastructure failures.
func Kind(err error) error {
	for _, kind := range []error{ErrNotFound, ErrForbidden, ErrBadRequest, ErrConflict} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// HTTPStatus maps err onto a response code.
func HTTPStatus(err error) int {
	switch Kind(err) {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrForbidden:
		return http.StatusForbidden
	case ErrBadRequest:
		return http.StatusBadRequest
	case ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
