package domaindir

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL bounds how long a stale binding can be served after an
// unbind on another node. Bind and Unbind invalidate locally.
const DefaultCacheTTL = 5 * time.Minute

// CachedDirectory wraps a Directory with a Redis read-through cache for the
// hot data-plane lookup path. Cache failures fall through to the underlying
// directory; resolution must never break because Redis is down.
type CachedDirectory struct {
	next   Directory
	client redis.UniversalClient
	ttl    time.Duration
	log    *slog.Logger
}

// NewCachedDirectory wraps next with a Redis cache. A nil logger discards
// cache diagnostics.
func NewCachedDirectory(next Directory, client redis.UniversalClient, ttl time.Duration, log *slog.Logger) *CachedDirectory {
	if next == nil {
		panic("domaindir: underlying directory is required")
	}
	if client == nil {
		panic("domaindir: redis client is required")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &CachedDirectory{next: next, client: client, ttl: ttl, log: log}
}

func cacheKey(domain string) string {
	return "domaindir:" + domain
}

// Resolve implements Directory.
func (d *CachedDirectory) Resolve(ctx context.Context, domain string) (*Binding, error) {
	domain = NormalizeDomain(domain)
	if domain == "" {
		return nil, ErrEmptyDomain
	}

	if raw, err := d.client.Get(ctx, cacheKey(domain)).Bytes(); err == nil {
		var b Binding
		if err := json.Unmarshal(raw, &b); err == nil {
			return &b, nil
		}
		// Corrupted entry; drop it and fall through to the source of truth.
		d.client.Del(ctx, cacheKey(domain))
	}

	b, err := d.next.Resolve(ctx, domain)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(b); err == nil {
		if err := d.client.Set(ctx, cacheKey(domain), raw, d.ttl).Err(); err != nil {
			d.log.WarnContext(ctx, "failed to cache domain binding",
				slog.String("domain", domain), slog.Any("error", err))
		}
	}
	return b, nil
}

// Bind implements Directory and invalidates the cached entry.
func (d *CachedDirectory) Bind(ctx context.Context, b Binding) error {
	if err := d.next.Bind(ctx, b); err != nil {
		return err
	}
	d.invalidate(ctx, NormalizeDomain(b.Domain))
	return nil
}

// Unbind implements Directory and invalidates the cached entry.
func (d *CachedDirectory) Unbind(ctx context.Context, domain string) error {
	if err := d.next.Unbind(ctx, domain); err != nil {
		return err
	}
	d.invalidate(ctx, NormalizeDomain(domain))
	return nil
}

// CountForTenant implements Directory. Counts are quota inputs and must not
// be served stale, so they always go to the underlying directory.
func (d *CachedDirectory) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return d.next.CountForTenant(ctx, tenantID)
}

func (d *CachedDirectory) invalidate(ctx context.Context, domain string) {
	if err := d.client.Del(ctx, cacheKey(domain)).Err(); err != nil {
		d.log.WarnContext(ctx, "failed to invalidate domain binding cache",
			slog.String("domain", domain), slog.Any("error", err))
	}
}
