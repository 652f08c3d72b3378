package catalog

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/reelgate/adapter/cli"
	"github.com/felixgeelhaar/reelgate/internal/access/token"
	catalogDomain "github.com/felixgeelhaar/reelgate/internal/catalog/domain"
)

var showCmd = &cobra.Command{
	Use:   "show <package|series> <id>",
	Short: "Show a package or series",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Catalog == nil {
			return cli.ErrNoDatabase
		}
		out := cmd.OutOrStdout()

		switch args[0] {
		case "package":
			pkg, err := app.Catalog.GetPackage(cmd.Context(), args[1])
			if errors.Is(err, catalogDomain.ErrPackageNotFound) {
				fmt.Fprintf(out, "Package not found: %s\n", args[1])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Package: %s\n", pkg.ID)
			fmt.Fprintf(out, "  video:   %s\n", pkg.VideoRef)
			fmt.Fprintf(out, "  cover:   %s\n", pkg.CoverRef)
			fmt.Fprintf(out, "  caption: %s\n", pkg.Caption)
			fmt.Fprintf(out, "  play:    %s\n", token.PlayPackage(pkg.ID))

		case "series":
			series, err := app.Catalog.GetSeries(cmd.Context(), args[1])
			if errors.Is(err, catalogDomain.ErrSeriesNotFound) {
				fmt.Fprintf(out, "Series not found: %s\n", args[1])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Series: %s (%s)\n", series.ID, series.Title)
			fmt.Fprintf(out, "  chapters: %d\n", series.Len())
			for i, ref := range series.Chapters {
				fmt.Fprintf(out, "  [%d] %s  %s\n", i, ref, token.PlayChapter(series.ID, i))
			}

		default:
			return fmt.Errorf("unknown kind %q, expected package or series", args[0])
		}
		return nil
	},
}
