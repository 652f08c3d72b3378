// Package domain holds the content catalog: standalone packages and
// series with append-only chapter lists.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Package is a single standalone media item.
type Package struct {
	ID        string
	CoverRef  string
	Caption   string
	VideoRef  string
	CreatedAt time.Time
}

// NewPackage validates and builds a package.
func NewPackage(id, coverRef, caption, videoRef string) (*Package, error) {
	id = strings.TrimSpace(id)
	videoRef = strings.TrimSpace(videoRef)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidPackage)
	}
	if videoRef == "" {
		return nil, fmt.Errorf("%w: video reference is required", ErrInvalidPackage)
	}
	return &Package{
		ID:        id,
		CoverRef:  strings.TrimSpace(coverRef),
		Caption:   caption,
		VideoRef:  videoRef,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Series is an ordered collection of chapters. Index i always refers to the
// same chapter once assigned.
type Series struct {
	ID        string
	Title     string
	CoverRef  string
	Caption   string
	Chapters  []string
	CreatedAt time.Time
}

// NewSeries validates and builds an empty series.
func NewSeries(id, title, coverRef, caption string) (*Series, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidSeries)
	}
	return &Series{
		ID:        id,
		Title:     strings.TrimSpace(title),
		CoverRef:  strings.TrimSpace(coverRef),
		Caption:   caption,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Len returns the number of chapters.
func (s *Series) Len() int {
	return len(s.Chapters)
}

// Chapter returns the video reference at index.
func (s *Series) Chapter(index int) (string, error) {
	if index < 0 || index >= len(s.Chapters) {
		return "", fmt.Errorf("%w: %d of %d", ErrChapterOutOfRange, index, len(s.Chapters))
	}
	return s.Chapters[index], nil
}

// HasPrevious reports whether a chapter exists before index.
func (s *Series) HasPrevious(index int) bool {
	return index-1 >= 0 && index-1 < len(s.Chapters)
}

// HasNext reports whether a chapter exists after index.
func (s *Series) HasNext(index int) bool {
	return index+1 >= 0 && index+1 < len(s.Chapters)
}

// Append adds a chapter at the end and returns its index.
func (s *Series) Append(videoRef string) (int, error) {
	videoRef = strings.TrimSpace(videoRef)
	if videoRef == "" {
		return 0, fmt.Errorf("%w: chapter video reference is required", ErrInvalidSeries)
	}
	s.Chapters = append(s.Chapters, videoRef)
	return len(s.Chapters) - 1, nil
}
