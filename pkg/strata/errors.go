// Package strata provides the public API for the Strata migration and
// trigger-consistency engine. It applies ordered, versioned schema
// changes exactly once, stays correct when several processes migrate
// concurrently at boot, and cross-validates hand-written trigger SQL
// against the schema the migrations produce.
package strata

import (
	"errors"
)

// Sentinel errors for common error conditions.
// Use errors.Is() to check for these errors.
var (
	// ErrMissingDatabaseURL is returned when no database URL is provided.
	ErrMissingDatabaseURL = errors.New("strata: database URL required")

	// ErrUnsupportedDialect is returned when the database dialect is not supported.
	ErrUnsupportedDialect = errors.New("strata: unsupported dialect")

	// ErrClosed is returned when a method is called on a closed client.
	ErrClosed = errors.New("strata: client is closed")
)
