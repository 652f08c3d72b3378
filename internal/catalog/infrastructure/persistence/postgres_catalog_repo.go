package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/reelgate/internal/catalog/domain"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/database"
)

// PostgresCatalogRepository implements domain.Repository with PostgreSQL.
type PostgresCatalogRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCatalogRepository creates a new repository.
func NewPostgresCatalogRepository(pool *pgxpool.Pool) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{pool: pool}
}

func (r *PostgresCatalogRepository) FindPackage(ctx context.Context, id string) (*domain.Package, error) {
	query := `
		SELECT id, cover_ref, caption, video_ref, created_at
		FROM packages
		WHERE id = $1
	`
	var pkg domain.Package
	err := r.pool.QueryRow(ctx, query, id).Scan(&pkg.ID, &pkg.CoverRef, &pkg.Caption, &pkg.VideoRef, &pkg.CreatedAt)
	if database.IsNoRows(err) {
		return nil, domain.ErrPackageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *PostgresCatalogRepository) FindSeries(ctx context.Context, id string) (*domain.Series, error) {
	query := `
		SELECT id, title, cover_ref, caption, created_at
		FROM series
		WHERE id = $1
	`
	var series domain.Series
	err := r.pool.QueryRow(ctx, query, id).Scan(&series.ID, &series.Title, &series.CoverRef, &series.Caption, &series.CreatedAt)
	if database.IsNoRows(err) {
		return nil, domain.ErrSeriesNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT video_ref FROM series_chapters WHERE series_id = $1 ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series.Chapters = make([]string, 0)
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		series.Chapters = append(series.Chapters, ref)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return &series, nil
}

func (r *PostgresCatalogRepository) CreatePackage(ctx context.Context, pkg *domain.Package) error {
	query := `
		INSERT INTO packages (id, cover_ref, caption, video_ref, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query, pkg.ID, pkg.CoverRef, pkg.Caption, pkg.VideoRef, createdAt(pkg.CreatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPackageExists
	}
	return nil
}

func (r *PostgresCatalogRepository) CreateSeries(ctx context.Context, series *domain.Series) error {
	query := `
		INSERT INTO series (id, title, cover_ref, caption, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query, series.ID, series.Title, series.CoverRef, series.Caption, createdAt(series.CreatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSeriesExists
	}
	return nil
}

// AppendChapter locks the series row so concurrent appends get distinct
// consecutive indices.
func (r *PostgresCatalogRepository) AppendChapter(ctx context.Context, seriesID, videoRef string) (int, error) {
	var idx int
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var id string
		if err := tx.QueryRow(ctx, `SELECT id FROM series WHERE id = $1 FOR UPDATE`, seriesID).Scan(&id); err != nil {
			if database.IsNoRows(err) {
				return domain.ErrSeriesNotFound
			}
			return err
		}
		query := `
			INSERT INTO series_chapters (series_id, idx, video_ref)
			VALUES ($1, (SELECT COALESCE(MAX(idx) + 1, 0) FROM series_chapters WHERE series_id = $1), $2)
			RETURNING idx
		`
		return tx.QueryRow(ctx, query, seriesID, videoRef).Scan(&idx)
	})
	if err != nil {
		return 0, fmt.Errorf("append chapter: %w", err)
	}
	return idx, nil
}

func createdAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

var _ domain.Repository = (*PostgresCatalogRepository)(nil)
