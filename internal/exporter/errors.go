package exporter

import "errors"

// Sentinel kinds for export errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrSerialize         = errors.New("export serialization failed")
)
