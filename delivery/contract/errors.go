package contract

import "errors"

var (
	// ErrUnknownStep marks a step value outside the dialogue sequence.
	ErrUnknownStep = errors.New("unknown dialogue step")
)
