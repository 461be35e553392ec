// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrOverlap signals that a requested date
// range collides with an existing booking on the same listing.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrOverlap is returned when a booking cannot be created because
// another pending or confirmed booking already covers at least one
// day of the requested range. Handlers should translate this into
// an HTTP 409 response.
var ErrOverlap = errors.New("booking dates overlap an existing booking")

// ErrConflict is returned when an update cannot be performed
// because of conflicting state, such as cancelling a booking that
// is already cancelled or completed. Handlers should translate
// this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
