package citeproc

import "errors"

var (
	// ErrUnknownStyle is returned when a style name has no implementation.
	ErrUnknownStyle = errors.New("unknown citation style")
	// ErrUnknownFormat is returned when an output format was never registered.
	ErrUnknownFormat = errors.New("unknown output format")
)
