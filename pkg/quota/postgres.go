package quota

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/landingkit/pkg/domaindir"
)

// NewPageCounter returns a counter over the `pages` table.
func NewPageCounter(db *pgxpool.Pool) UsageCounterFunc {
	if db == nil {
		panic("quota: pgx pool is required")
	}
	return func(ctx context.Context, tenantID uuid.UUID) (int64, error) {
		var count int64
		err := db.QueryRow(ctx,
			`SELECT COUNT(*) FROM pages WHERE tenant_id = $1`, tenantID,
		).Scan(&count)
		if err != nil {
			return 0, errors.Join(ErrUsageLookup, err)
		}
		return count, nil
	}
}

// NewStorageCounter returns a counter aggregating asset sizes from the
// `assets` table.
func NewStorageCounter(db *pgxpool.Pool) UsageCounterFunc {
	if db == nil {
		panic("quota: pgx pool is required")
	}
	return func(ctx context.Context, tenantID uuid.UUID) (int64, error) {
		var total int64
		err := db.QueryRow(ctx,
			`SELECT COALESCE(SUM(size_bytes), 0) FROM assets WHERE tenant_id = $1`, tenantID,
		).Scan(&total)
		if err != nil {
			return 0, errors.Join(ErrUsageLookup, err)
		}
		return total, nil
	}
}

// NewDomainCounter adapts a domain directory into a usage counter.
func NewDomainCounter(dir domaindir.Directory) UsageCounterFunc {
	if dir == nil {
		panic("quota: domain directory is required")
	}
	return func(ctx context.Context, tenantID uuid.UUID) (int64, error) {
		count, err := dir.CountForTenant(ctx, tenantID)
		if err != nil {
			return 0, errors.Join(ErrUsageLookup, err)
		}
		return count, nil
	}
}
