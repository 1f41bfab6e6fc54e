package scoring

import "errors"

// Sentinel kinds for ballot validation errors.
var (
	ErrIncompleteSubmission = errors.New("submission incomplete")
	ErrInvalidScore         = errors.New("score out of range")
	ErrUnknownPeer          = errors.New("ballot names a non-peer")
)
