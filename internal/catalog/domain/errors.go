package domain

import "errors"

var (
	ErrPackageNotFound   = errors.New("package not found")
	ErrSeriesNotFound    = errors.New("series not found")
	ErrChapterOutOfRange = errors.New("chapter index out of range")
	ErrPackageExists     = errors.New("package already exists")
	ErrSeriesExists      = errors.New("series already exists")
	ErrInvalidPackage    = errors.New("invalid package")
	ErrInvalidSeries     = errors.New("invalid series")
)
