package customizations

import "errors"

var (
	// ErrNotFound is returned when a customization does not exist.
	ErrNotFound = errors.New("customization not found")
	// ErrInvalidInput is returned when required request data is missing.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoTechStacks is returned when the pasted text yields no points.
	ErrNoTechStacks = errors.New("no tech stacks could be parsed from the provided text")
	// ErrNotReady is returned when a download is requested before the job completed.
	ErrNotReady = errors.New("customization result not ready")
)
