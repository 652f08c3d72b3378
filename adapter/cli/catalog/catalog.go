package catalog

import "github.com/spf13/cobra"

// Cmd is the catalog command group.
var Cmd = &cobra.Command{
	Use:   "catalog",
	Short: "Ingest and inspect content",
	Long: `Add packages and series to the catalog and inspect what is stored.

Chapters are append-only: once assigned, an index always refers to the
same chapter.`,
}

func init() {
	Cmd.AddCommand(addPackageCmd)
	Cmd.AddCommand(createSeriesCmd)
	Cmd.AddCommand(addChapterCmd)
	Cmd.AddCommand(showCmd)
}
