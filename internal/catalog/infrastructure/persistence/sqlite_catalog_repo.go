package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/reelgate/internal/catalog/domain"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/database"
)

// SQLiteCatalogRepository implements domain.Repository with SQLite.
type SQLiteCatalogRepository struct {
	dbConn *sql.DB
}

// NewSQLiteCatalogRepository creates a new repository.
func NewSQLiteCatalogRepository(dbConn *sql.DB) *SQLiteCatalogRepository {
	return &SQLiteCatalogRepository{dbConn: dbConn}
}

func (r *SQLiteCatalogRepository) FindPackage(ctx context.Context, id string) (*domain.Package, error) {
	query := `
		SELECT id, cover_ref, caption, video_ref, created_at
		FROM packages
		WHERE id = ?
	`
	var (
		pkg     domain.Package
		created string
	)
	err := r.dbConn.QueryRowContext(ctx, query, id).Scan(&pkg.ID, &pkg.CoverRef, &pkg.Caption, &pkg.VideoRef, &created)
	if database.IsNoRows(err) {
		return nil, domain.ErrPackageNotFound
	}
	if err != nil {
		return nil, err
	}
	if pkg.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("parse package created_at: %w", err)
	}
	return &pkg, nil
}

func (r *SQLiteCatalogRepository) FindSeries(ctx context.Context, id string) (*domain.Series, error) {
	query := `
		SELECT id, title, cover_ref, caption, created_at
		FROM series
		WHERE id = ?
	`
	var (
		series  domain.Series
		created string
	)
	err := r.dbConn.QueryRowContext(ctx, query, id).Scan(&series.ID, &series.Title, &series.CoverRef, &series.Caption, &created)
	if database.IsNoRows(err) {
		return nil, domain.ErrSeriesNotFound
	}
	if err != nil {
		return nil, err
	}
	if series.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("parse series created_at: %w", err)
	}

	rows, err := r.dbConn.QueryContext(ctx, `SELECT video_ref FROM series_chapters WHERE series_id = ? ORDER BY idx`, id)
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

func (r *SQLiteCatalogRepository) CreatePackage(ctx context.Context, pkg *domain.Package) error {
	query := `
		INSERT INTO packages (id, cover_ref, caption, video_ref, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := r.dbConn.ExecContext(ctx, query,
		pkg.ID, pkg.CoverRef, pkg.Caption, pkg.VideoRef, createdAt(pkg.CreatedAt).Format(time.RFC3339Nano))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrPackageExists
	}
	return nil
}

func (r *SQLiteCatalogRepository) CreateSeries(ctx context.Context, series *domain.Series) error {
	query := `
		INSERT INTO series (id, title, cover_ref, caption, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := r.dbConn.ExecContext(ctx, query,
		series.ID, series.Title, series.CoverRef, series.Caption, createdAt(series.CreatedAt).Format(time.RFC3339Nano))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrSeriesExists
	}
	return nil
}

// AppendChapter computes the next index inside the insert itself; the
// single-writer SQLite connection makes the statement atomic.
func (r *SQLiteCatalogRepository) AppendChapter(ctx context.Context, seriesID, videoRef string) (int, error) {
	query := `
		INSERT INTO series_chapters (series_id, idx, video_ref)
		SELECT s.id, COALESCE((SELECT MAX(c.idx) + 1 FROM series_chapters c WHERE c.series_id = s.id), 0), ?
		FROM series s
		WHERE s.id = ?
		RETURNING idx
	`
	var idx int
	err := r.dbConn.QueryRowContext(ctx, query, videoRef, seriesID).Scan(&idx)
	if database.IsNoRows(err) {
		return 0, domain.ErrSeriesNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("append chapter: %w", err)
	}
	return idx, nil
}

var _ domain.Repository = (*SQLiteCatalogRepository)(nil)
