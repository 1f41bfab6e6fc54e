package roster

import "errors"

// Sentinel kinds for roster errors.
var (
	ErrUnmappedName = errors.New("name not mapped to any subgroup")
)
