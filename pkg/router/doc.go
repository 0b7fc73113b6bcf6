// Package router classifies inbound requests of the landing-page builder
// into control-plane traffic (the authoring app) and data-plane traffic
// (published pages on the shared host or custom domains).
//
// Classification is a pure function over immutable tables built once from
// Config, so the router is safe under unbounded request parallelism. The
// rules, in order:
//
//  1. A host is control-plane when it matches the local dev host, the
//     operator's primary domain, or the wildcard hosting domain (apex or any
//     subdomain). Ports are stripped, comparison is case-insensitive, and a
//     malformed host fails toward data-plane.
//  2. On a data-plane host, "/" rewrites to the domain-resolution endpoint
//     with a login fallback; the control-plane's reserved prefixes are still
//     promoted to control-plane handling (a custom domain must reach the
//     shared API and auth surface); everything else passes through to the
//     page-serving collaborator.
//  3. On a control-plane host, paths classify as known-app, public, or API
//     in that priority order; public and API paths are never redirected to
//     login, known-app paths require a session.
//
// Middleware adapts decisions to net/http, and ResolveHandler implements the
// domain-resolution endpoint on top of a domaindir.Directory.
package router
