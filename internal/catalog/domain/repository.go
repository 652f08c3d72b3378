package domain

import "context"

// Reader is the read side of the catalog.
type Reader interface {
	// FindPackage returns ErrPackageNotFound when id is unknown.
	FindPackage(ctx context.Context, id string) (*Package, error)

	// FindSeries returns the series with its chapters in index order, or
	// ErrSeriesNotFound.
	FindSeries(ctx context.Context, id string) (*Series, error)
}

// Repository adds the administrative write side. Packages and series are
// insert-only; chapters can only be appended.
type Repository interface {
	Reader

	// CreatePackage returns ErrPackageExists if the id is taken.
	CreatePackage(ctx context.Context, pkg *Package) error

	// CreateSeries returns ErrSeriesExists if the id is taken. Any chapters
	// on the series are ignored.
	CreateSeries(ctx context.Context, series *Series) error

	// AppendChapter assigns the next index atomically and returns it.
	AppendChapter(ctx context.Context, seriesID, videoRef string) (int, error)
}
