package errors

import "errors"

var (
	ErrNoPolicyActive = errors.New("no active cancellation policy for property")

	ErrInvalidID = errors.New("invalid policy ID format")
)
