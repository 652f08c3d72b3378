package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/reelgate/internal/catalog/domain"
)

func TestNewPackage_Validation(t *testing.T) {
	_, err := domain.NewPackage(" ", "cover", "caption", "video")
	assert.ErrorIs(t, err, domain.ErrInvalidPackage)

	_, err = domain.NewPackage("p1", "cover", "caption", "")
	assert.ErrorIs(t, err, domain.ErrInvalidPackage)

	pkg, err := domain.NewPackage(" p1 ", "cover", "A caption", "vid-1")
	require.NoError(t, err)
	assert.Equal(t, "p1", pkg.ID)
	assert.Equal(t, "vid-1", pkg.VideoRef)
}

func TestSeries_AppendAndChapter(t *testing.T) {
	series, err := domain.NewSeries("S1", "Title", "cover", "")
	require.NoError(t, err)

	for i, ref := range []string{"a", "b", "c"} {
		idx, err := series.Append(ref)
		require.NoError(t, err)
		assert.Equal(t, i, idx)
	}

	ref, err := series.Chapter(2)
	require.NoError(t, err)
	assert.Equal(t, "c", ref)

	_, err = series.Chapter(3)
	assert.ErrorIs(t, err, domain.ErrChapterOutOfRange)
	_, err = series.Chapter(-1)
	assert.ErrorIs(t, err, domain.ErrChapterOutOfRange)

	_, err = series.Append("")
	assert.ErrorIs(t, err, domain.ErrInvalidSeries)
	assert.Equal(t, 3, series.Len())
}

func TestSeries_Navigation(t *testing.T) {
	series := &domain.Series{ID: "S", Chapters: []string{"a", "b", "c"}}

	assert.False(t, series.HasPrevious(0))
	assert.True(t, series.HasNext(0))
	assert.True(t, series.HasPrevious(2))
	assert.False(t, series.HasNext(2))

	single := &domain.Series{ID: "one", Chapters: []string{"a"}}
	assert.False(t, single.HasPrevious(0))
	assert.False(t, single.HasNext(0))
}

func TestNewSeries_RequiresID(t *testing.T) {
	_, err := domain.NewSeries("", "t", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidSeries)
}
