package domain

import "errors"

var (
	// ErrNotFound signals a missing resource (database, container or document).
	ErrNotFound = errors.New("not found")
	// ErrConflict signals that a resource with the same id already exists.
	ErrConflict = errors.New("conflict")
	// ErrBadRequest signals a malformed request or query.
	ErrBadRequest = errors.New("bad request")
	// ErrUnauthorized signals a missing or invalid authorization token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPreconditionFailed signals an etag mismatch on a conditional operation.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrThrottled signals that the service rejected the request for lack of
	// provisioned throughput.
	ErrThrottled = errors.New("request rate too large")
)
