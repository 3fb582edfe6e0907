package recorddb

import "errors"

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrInvalidTransition  = errors.New("invalid record status transition")
	ErrProgressOutOfRange = errors.New("progress out of range")
)
