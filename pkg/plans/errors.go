package plans

import "errors"

var (
	ErrEmptyCatalog   = errors.New("plan catalog is empty")
	ErrInvalidCatalog = errors.New("invalid plan catalog configuration")
	ErrPriceNotFound  = errors.New("no price configured for plan and interval")
)
