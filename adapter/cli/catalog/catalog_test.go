package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/reelgate/adapter/cli"
	catalogApp "github.com/felixgeelhaar/reelgate/internal/catalog/application"
	catalogDomain "github.com/felixgeelhaar/reelgate/internal/catalog/domain"
	"github.com/felixgeelhaar/reelgate/internal/catalog/infrastructure/persistence"
)

func resetFlags() {
	packageCover, packageCaption, packageVideo = "", "", ""
	seriesTitle, seriesCover, seriesCaption = "", "", ""
}

func setupApp(t *testing.T) *catalogApp.Service {
	t.Helper()
	svc := catalogApp.NewService(persistence.NewInMemoryCatalogRepository(), nil)
	cli.SetApp(&cli.App{Catalog: svc})
	t.Cleanup(func() { cli.SetApp(nil) })
	return svc
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out strings.Builder
	Cmd.SetOut(&out)
	Cmd.SetErr(&out)
	Cmd.SetArgs(args)
	err := Cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCatalogCmds_NoApp(t *testing.T) {
	cli.SetApp(nil)
	for _, args := range [][]string{
		{"add-package", "p", "--video", "v"},
		{"create-series", "s"},
		{"add-chapter", "s", "v"},
		{"show", "package", "p"},
	} {
		_, err := run(t, args...)
		assert.ErrorIs(t, err, cli.ErrNoDatabase, args)
	}
}

func TestAddPackageCmd(t *testing.T) {
	svc := setupApp(t)

	out, err := run(t, "add-package", "intro", "--video", "file-1", "--caption", "Hello")
	require.NoError(t, err)
	assert.Contains(t, out, "play:    play_video_intro")

	pkg, err := svc.GetPackage(context.Background(), "intro")
	require.NoError(t, err)
	assert.Equal(t, "file-1", pkg.VideoRef)
	assert.Equal(t, "Hello", pkg.Caption)

	_, err = run(t, "add-package", "intro", "--video", "file-2")
	assert.ErrorIs(t, err, catalogDomain.ErrPackageExists)

	_, err = run(t, "add-package", "other")
	assert.Error(t, err)
}

func TestSeriesCmds(t *testing.T) {
	setupApp(t)

	_, err := run(t, "create-series", "s1", "--title", "Season 1")
	require.NoError(t, err)

	out, err := run(t, "add-chapter", "s1", "ep-a")
	require.NoError(t, err)
	assert.Contains(t, out, "Chapter 0 added: cap_s1_0")
	out, err = run(t, "add-chapter", "s1", "ep-b")
	require.NoError(t, err)
	assert.Contains(t, out, "Chapter 1 added: cap_s1_1")

	out, err = run(t, "show", "series", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "Series: s1 (Season 1)")
	assert.Contains(t, out, "[1] ep-b  cap_s1_1")

	_, err = run(t, "add-chapter", "missing", "ep")
	assert.ErrorIs(t, err, catalogDomain.ErrSeriesNotFound)
}

func TestShowCmd_NotFoundAndBadKind(t *testing.T) {
	setupApp(t)

	out, err := run(t, "show", "package", "nope")
	require.NoError(t, err)
	assert.Contains(t, out, "Package not found: nope")

	_, err = run(t, "show", "album", "x")
	assert.Error(t, err)
}
