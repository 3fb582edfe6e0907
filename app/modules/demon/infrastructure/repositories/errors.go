package demondb

import "errors"

var (
	ErrDemonNotFound      = errors.New("demon not found")
	ErrPositionOutOfRange = errors.New("position out of range")
	ErrDemonRemoved       = errors.New("demon has been removed from the list")
)
