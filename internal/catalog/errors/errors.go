package errors

import "errors"

var (
	ErrRoomNotFound = errors.New("room not found")

	ErrPropertyNotFound = errors.New("property not found")

	ErrInvalidID = errors.New("invalid catalog ID format")
)
