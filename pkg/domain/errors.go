package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnsupportedFormat is returned when the reference file extension is not recognised.
var ErrUnsupportedFormat = errors.New("unsupported reference table format")

// ErrMissingColumns is returned when the reference file lacks the code or description column.
var ErrMissingColumns = errors.New("reference table is missing required columns")

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)
