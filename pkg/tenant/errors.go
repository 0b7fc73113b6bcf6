package tenant

import "errors"

var (
	ErrTenantNotFound    = errors.New("tenant not found")
	ErrNilTenant         = errors.New("nil tenant")
	ErrNoTenantInContext = errors.New("no tenant in context")
)
