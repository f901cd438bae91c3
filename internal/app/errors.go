package app

import "errors"

// ErrNotFound and related errors describe repository and runtime failures.
var (
	ErrNotFound    = errors.New("not found")
	ErrDuplicateID = errors.New("duplicate lead id")
)
