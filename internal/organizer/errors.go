package organizer

import "errors"

var (
	// ErrDirectoryNotFound is returned when a source, archive, or custom
	// directory is unset or missing on disk.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrInvalidPackageFormat is returned when a package header fails magic
	// number or length validation, or its metadata cannot be decoded.
	ErrInvalidPackageFormat = errors.New("invalid package format")

	// ErrInvalidOperation is returned when an archive or restore request
	// violates a precondition. No I/O has happened when it is returned.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrCopyFailure wraps errors from the underlying file copy.
	ErrCopyFailure = errors.New("copy failed")

	// ErrDestinationExists is returned when a copy would overwrite an
	// existing file without permission to do so.
	ErrDestinationExists = errors.New("destination file already exists")

	// ErrUnhandledLocation indicates a Location value with no defined case.
	// It is a programming error, not a runtime condition.
	ErrUnhandledLocation = errors.New("unhandled location")
)
