package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/reelgate/internal/catalog/domain"
)

// Service exposes catalog lookups and the administrative ingestion
// operations.
type Service struct {
	repo   domain.Repository
	logger *slog.Logger
}

// NewService creates a new catalog service.
func NewService(repo domain.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// GetPackage returns the package or ErrPackageNotFound.
func (s *Service) GetPackage(ctx context.Context, id string) (*domain.Package, error) {
	return s.repo.FindPackage(ctx, id)
}

// GetSeries returns the series or ErrSeriesNotFound.
func (s *Service) GetSeries(ctx context.Context, id string) (*domain.Series, error) {
	return s.repo.FindSeries(ctx, id)
}

// GetChapter returns the chapter's video reference. Unknown series yield
// ErrSeriesNotFound; bad indices yield ErrChapterOutOfRange.
func (s *Service) GetChapter(ctx context.Context, seriesID string, index int) (string, error) {
	series, err := s.repo.FindSeries(ctx, seriesID)
	if err != nil {
		return "", err
	}
	return series.Chapter(index)
}

// AddPackageInput is the payload for AddPackage.
type AddPackageInput struct {
	ID       string
	CoverRef string
	Caption  string
	VideoRef string
}

// AddPackage ingests a new standalone package.
func (s *Service) AddPackage(ctx context.Context, in AddPackageInput) (*domain.Package, error) {
	pkg, err := domain.NewPackage(in.ID, in.CoverRef, in.Caption, in.VideoRef)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreatePackage(ctx, pkg); err != nil {
		return nil, fmt.Errorf("create package %s: %w", pkg.ID, err)
	}
	s.logger.Info("package added", "package_id", pkg.ID)
	return pkg, nil
}

// CreateSeriesInput is the payload for CreateSeries.
type CreateSeriesInput struct {
	ID       string
	Title    string
	CoverRef string
	Caption  string
}

// CreateSeries ingests a new, empty series.
func (s *Service) CreateSeries(ctx context.Context, in CreateSeriesInput) (*domain.Series, error) {
	series, err := domain.NewSeries(in.ID, in.Title, in.CoverRef, in.Caption)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateSeries(ctx, series); err != nil {
		return nil, fmt.Errorf("create series %s: %w", series.ID, err)
	}
	s.logger.Info("series created", "series_id", series.ID)
	return series, nil
}

// AppendChapter adds a chapter to the end of a series and returns the
// index it was assigned.
func (s *Service) AppendChapter(ctx context.Context, seriesID, videoRef string) (int, error) {
	draft := &domain.Series{ID: seriesID}
	if _, err := draft.Append(videoRef); err != nil {
		return 0, err
	}
	idx, err := s.repo.AppendChapter(ctx, seriesID, draft.Chapters[0])
	if err != nil {
		return 0, err
	}
	s.logger.Info("chapter appended", "series_id", seriesID, "index", idx)
	return idx, nil
}
