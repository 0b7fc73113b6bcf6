package domaindir

import "errors"

var (
	ErrDomainNotBound = errors.New("domain is not bound to any page")
	ErrDomainTaken    = errors.New("domain is already bound to another tenant")
	ErrEmptyDomain    = errors.New("empty domain")
)
