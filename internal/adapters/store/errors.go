package store

import "errors"

// Sentinel kinds for answer store errors.
var (
	ErrAppend = errors.New("store append failed")
	ErrLoad   = errors.New("store load failed")
)
