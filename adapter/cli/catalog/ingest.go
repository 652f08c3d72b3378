package catalog

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/reelgate/adapter/cli"
	"github.com/felixgeelhaar/reelgate/internal/access/token"
	catalogApp "github.com/felixgeelhaar/reelgate/internal/catalog/application"
)

var (
	packageCover   string
	packageCaption string
	packageVideo   string

	seriesTitle   string
	seriesCover   string
	seriesCaption string
)

var addPackageCmd = &cobra.Command{
	Use:   "add-package <id>",
	Short: "Add a standalone package",
	Long: `Add a standalone package.

Examples:
  reelgate catalog add-package intro --video file-123 --cover img-9 --caption "Welcome"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Catalog == nil {
			return cli.ErrNoDatabase
		}
		if packageVideo == "" {
			return errors.New("--video is required")
		}

		pkg, err := app.Catalog.AddPackage(cmd.Context(), catalogApp.AddPackageInput{
			ID:       args[0],
			CoverRef: packageCover,
			Caption:  packageCaption,
			VideoRef: packageVideo,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Package added: %s\n", pkg.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "  preview: %s\n", token.ViewPackage(pkg.ID))
		fmt.Fprintf(cmd.OutOrStdout(), "  play:    %s\n", token.PlayPackage(pkg.ID))
		return nil
	},
}

var createSeriesCmd = &cobra.Command{
	Use:   "create-series <id>",
	Short: "Create an empty series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Catalog == nil {
			return cli.ErrNoDatabase
		}

		series, err := app.Catalog.CreateSeries(cmd.Context(), catalogApp.CreateSeriesInput{
			ID:       args[0],
			Title:    seriesTitle,
			CoverRef: seriesCover,
			Caption:  seriesCaption,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Series created: %s\n", series.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "  preview: %s\n", token.ViewSeries(series.ID))
		return nil
	},
}

var addChapterCmd = &cobra.Command{
	Use:   "add-chapter <series-id> <video-ref>",
	Short: "Append a chapter to a series",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Catalog == nil {
			return cli.ErrNoDatabase
		}

		idx, err := app.Catalog.AppendChapter(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Chapter %d added: %s\n", idx, token.PlayChapter(args[0], idx))
		return nil
	},
}

func init() {
	addPackageCmd.Flags().StringVar(&packageVideo, "video", "", "video reference (required)")
	addPackageCmd.Flags().StringVar(&packageCover, "cover", "", "cover image reference")
	addPackageCmd.Flags().StringVar(&packageCaption, "caption", "", "caption shown with the preview")

	createSeriesCmd.Flags().StringVar(&seriesTitle, "title", "", "series title")
	createSeriesCmd.Flags().StringVar(&seriesCover, "cover", "", "cover image reference")
	createSeriesCmd.Flags().StringVar(&seriesCaption, "caption", "", "caption shown with the preview")
}
