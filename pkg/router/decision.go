package router

// Kind is the outcome of classifying an inbound (host, path) pair.
type Kind string

const (
	// ServeApp passes the request to the control-plane application.
	ServeApp Kind = "serve_app"

	// RewriteToDomainResolution rewrites a data-plane root request to the
	// domain-resolution endpoint, carrying the host and a login fallback.
	RewriteToDomainResolution Kind = "rewrite_domain_resolution"

	// RedirectToLogin sends an unauthenticated session to the login page.
	RedirectToLogin Kind = "redirect_login"

	// RedirectToApp sends an authenticated root request to the authoring
	// surface.
	RedirectToApp Kind = "redirect_app"

	// PassThrough leaves the request to the page-serving collaborator.
	PassThrough Kind = "pass_through"
)

// Decision is the result of classifying a request.
type Decision struct {
	Kind Kind

	// Domain carries the normalized hostname for RewriteToDomainResolution.
	Domain string

	// Target is the redirect or fallback path, set for the redirect kinds
	// and as the fallback of RewriteToDomainResolution.
	Target string
}
