package errors

import "errors"

var (
	ErrNotFound = errors.New("room block not found")

	ErrInvalidID = errors.New("invalid room block ID format")

	ErrInvalidDateRange = errors.New("date_end must be after date_start")
)
