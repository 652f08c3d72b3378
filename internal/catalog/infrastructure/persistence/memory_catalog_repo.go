package persistence

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/reelgate/internal/catalog/domain"
)

// InMemoryCatalogRepository is a process-local catalog.
type InMemoryCatalogRepository struct {
	mu       sync.RWMutex
	packages map[string]domain.Package
	series   map[string]*domain.Series
}

// NewInMemoryCatalogRepository creates an empty catalog.
func NewInMemoryCatalogRepository() *InMemoryCatalogRepository {
	return &InMemoryCatalogRepository{
		packages: make(map[string]domain.Package),
		series:   make(map[string]*domain.Series),
	}
}

func (r *InMemoryCatalogRepository) FindPackage(ctx context.Context, id string) (*domain.Package, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pkg, ok := r.packages[id]
	if !ok {
		return nil, domain.ErrPackageNotFound
	}
	return &pkg, nil
}

func (r *InMemoryCatalogRepository) FindSeries(ctx context.Context, id string) (*domain.Series, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.series[id]
	if !ok {
		return nil, domain.ErrSeriesNotFound
	}
	out := *s
	out.Chapters = append([]string(nil), s.Chapters...)
	return &out, nil
}

func (r *InMemoryCatalogRepository) CreatePackage(ctx context.Context, pkg *domain.Package) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.packages[pkg.ID]; ok {
		return domain.ErrPackageExists
	}
	stored := *pkg
	stored.CreatedAt = createdAt(pkg.CreatedAt)
	r.packages[pkg.ID] = stored
	return nil
}

func (r *InMemoryCatalogRepository) CreateSeries(ctx context.Context, series *domain.Series) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.series[series.ID]; ok {
		return domain.ErrSeriesExists
	}
	stored := *series
	stored.Chapters = nil
	stored.CreatedAt = createdAt(series.CreatedAt)
	r.series[series.ID] = &stored
	return nil
}

func (r *InMemoryCatalogRepository) AppendChapter(ctx context.Context, seriesID, videoRef string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.series[seriesID]
	if !ok {
		return 0, domain.ErrSeriesNotFound
	}
	return s.Append(videoRef)
}

var _ domain.Repository = (*InMemoryCatalogRepository)(nil)
