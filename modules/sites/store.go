package sites

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Page is a tenant's landing page. Content editing lives elsewhere; this
// module only tracks existence for quota accounting and publishing.
type Page struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Asset is an uploaded file belonging to a tenant. Only metadata is stored
// here; the blob itself lives in object storage handled by a collaborator.
type Asset struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	SizeBytes int64
	CreatedAt time.Time
}

// PageStore persists pages.
type PageStore interface {
	CreatePage(ctx context.Context, tenantID uuid.UUID, name string) (*Page, error)
	ListPages(ctx context.Context, tenantID uuid.UUID) ([]Page, error)
	DeletePage(ctx context.Context, tenantID, pageID uuid.UUID) error
}

// AssetStore persists asset metadata.
type AssetStore interface {
	SaveAsset(ctx context.Context, tenantID uuid.UUID, name string, sizeBytes int64) (*Asset, error)
}

var (
	// ErrPageNotFound is returned when a page does not exist or belongs to
	// another tenant.
	ErrPageNotFound = errors.New("page not found")
)

// PostgresStore implements PageStore and AssetStore over the pages and
// assets tables, the same tables the quota counters aggregate.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	if db == nil {
		panic("sites: pgx pool is required")
	}
	return &PostgresStore{db: db}
}

// CreatePage implements PageStore.
func (s *PostgresStore) CreatePage(ctx context.Context, tenantID uuid.UUID, name string) (*Page, error) {
	page := &Page{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     name,
	}
	err := s.db.QueryRow(ctx,
		`INSERT INTO pages (id, tenant_id, name, created_at)
		 VALUES ($1, $2, $3, now())
		 RETURNING created_at`,
		page.ID, page.TenantID, page.Name,
	).Scan(&page.CreatedAt)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// ListPages implements PageStore.
func (s *PostgresStore) ListPages(ctx context.Context, tenantID uuid.UUID) ([]Page, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, tenant_id, name, created_at FROM pages
		 WHERE tenant_id = $1 ORDER BY created_at`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// DeletePage implements PageStore. The tenant ID guards against deleting
// another tenant's page by guessed UUID.
func (s *PostgresStore) DeletePage(ctx context.Context, tenantID, pageID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM pages WHERE id = $1 AND tenant_id = $2`,
		pageID, tenantID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPageNotFound
	}
	return nil
}

// SaveAsset implements AssetStore.
func (s *PostgresStore) SaveAsset(ctx context.Context, tenantID uuid.UUID, name string, sizeBytes int64) (*Asset, error) {
	asset := &Asset{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      name,
		SizeBytes: sizeBytes,
	}
	err := s.db.QueryRow(ctx,
		`INSERT INTO assets (id, tenant_id, name, size_bytes, created_at)
		 VALUES ($1, $2, $3, $4, now())
		 RETURNING created_at`,
		asset.ID, asset.TenantID, asset.Name, asset.SizeBytes,
	).Scan(&asset.CreatedAt)
	if err != nil {
		return nil, err
	}
	return asset, nil
}
