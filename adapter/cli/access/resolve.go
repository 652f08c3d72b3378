package access

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/reelgate/internal/access/token"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <token>",
	Short: "Decode a token without touching any store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		intent, err := token.Resolve(args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), intent)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Action: %s\n", intent.Action)
		fmt.Fprintf(cmd.OutOrStdout(), "Target: %s\n", intent.TargetID)
		if intent.Action == token.ActionPlayChapter {
			fmt.Fprintf(cmd.OutOrStdout(), "Index:  %d\n", intent.Index)
		}
		return nil
	},
}
