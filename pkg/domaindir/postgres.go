package domaindir

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDirectory persists domain bindings with a unique constraint on the
// domain column, which is what actually enforces platform-wide uniqueness.
type PostgresDirectory struct {
	db *pgxpool.Pool
}

// NewPostgresDirectory creates a directory backed by the given pool.
func NewPostgresDirectory(db *pgxpool.Pool) *PostgresDirectory {
	if db == nil {
		panic("domaindir: pgx pool is required")
	}
	return &PostgresDirectory{db: db}
}

// Resolve implements Directory.
func (d *PostgresDirectory) Resolve(ctx context.Context, domain string) (*Binding, error) {
	domain = NormalizeDomain(domain)
	if domain == "" {
		return nil, ErrEmptyDomain
	}

	var b Binding
	err := d.db.QueryRow(ctx, `
		SELECT domain, tenant_id, tenant_page_id, note, created_at
		FROM domain_bindings WHERE domain = $1`, domain,
	).Scan(&b.Domain, &b.TenantID, &b.TenantPageID, &b.Note, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDomainNotBound
		}
		return nil, err
	}
	return &b, nil
}

// Bind implements Directory.
func (d *PostgresDirectory) Bind(ctx context.Context, b Binding) error {
	b.Domain = NormalizeDomain(b.Domain)
	if b.Domain == "" {
		return ErrEmptyDomain
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	tag, err := d.db.Exec(ctx, `
		INSERT INTO domain_bindings (domain, tenant_id, tenant_page_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (domain) DO UPDATE SET
			tenant_page_id = EXCLUDED.tenant_page_id,
			note = EXCLUDED.note
		WHERE domain_bindings.tenant_id = EXCLUDED.tenant_id`,
		b.Domain, b.TenantID, b.TenantPageID, b.Note, b.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDomainTaken
		}
		return err
	}
	// The conditional upsert skips the row when the domain belongs to a
	// different tenant; zero affected rows is the only signal for that.
	if tag.RowsAffected() == 0 {
		return ErrDomainTaken
	}
	return nil
}

// Unbind implements Directory.
func (d *PostgresDirectory) Unbind(ctx context.Context, domain string) error {
	domain = NormalizeDomain(domain)
	if domain == "" {
		return ErrEmptyDomain
	}
	_, err := d.db.Exec(ctx, `DELETE FROM domain_bindings WHERE domain = $1`, domain)
	return err
}

// CountForTenant implements Directory.
func (d *PostgresDirectory) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64
	err := d.db.QueryRow(ctx,
		`SELECT count(*) FROM domain_bindings WHERE tenant_id = $1`, tenantID,
	).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}
