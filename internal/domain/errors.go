package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrStorageOffline indicates the storage backend is unreachable
	ErrStorageOffline = errors.New("storage backend is unreachable")

	// ErrAuthFailed indicates the service key was rejected
	ErrAuthFailed = errors.New("storage credentials are invalid")

	// ErrObjectNotFound indicates the requested blob does not exist
	ErrObjectNotFound = errors.New("object not found")

	// ErrNoDataset indicates an operation that needs an open dataset ran without one
	ErrNoDataset = errors.New("no dataset is open")
)
