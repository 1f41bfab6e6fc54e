package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotConfigured = errors.New("service not configured")
	ErrNotStarted    = errors.New("service not started")
)
