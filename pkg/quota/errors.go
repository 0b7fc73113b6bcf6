package quota

import "errors"

var (
	// ErrUsageLookup wraps failures from usage counter queries.
	ErrUsageLookup = errors.New("failed to look up resource usage")
)
