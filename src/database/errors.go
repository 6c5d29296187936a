package database

import "errors"

var (
	// ErrTenantNotFound means the path segment did not resolve to a known
	// entity. Fatal for the request.
	ErrTenantNotFound = errors.New("entity not found")

	// ErrStorageUnavailable means the control store or a tenant store could
	// not be reached. Retryable.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
