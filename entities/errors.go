package entities

import "errors"

var (
	ErrMalformedEntity   = errors.New("malformed entity")
	ErrIndexOutOfRange   = errors.New("entity index out of range")
	ErrOverlappingEntity = errors.New("overlapping entities")
)
