package router

import "errors"

var (
	ErrMissingWildcardDomain = errors.New("wildcard hosting domain is required")
	ErrOverlappingPrefixes   = errors.New("reserved path prefix sets overlap")
)
