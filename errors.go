package docdex

import "github.com/kailas-cloud/docdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound           = domain.ErrNotFound
	ErrConflict           = domain.ErrConflict
	ErrBadRequest         = domain.ErrBadRequest
	ErrUnauthorized       = domain.ErrUnauthorized
	ErrPreconditionFailed = domain.ErrPreconditionFailed
	ErrThrottled          = domain.ErrThrottled
)
