// Package domaindir maps custom domains to tenants' published pages.
//
// Every data-plane request for a custom domain resolves through a Directory,
// so the package ships a Redis read-through cache (CachedDirectory) in front
// of the persistent PostgresDirectory. Bindings are tenant-driven: created
// after a quota check approves the domain, deleted on removal.
package domaindir
